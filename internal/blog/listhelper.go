package blog

// Favorite is the projection returned by FavoriteBlog.
type Favorite struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Likes  int    `json:"likes"`
}

// Blogger is the author with the most blogs, see MostBlogs.
type Blogger struct {
	Author string `json:"author"`
	Blogs  int    `json:"blogs"`
}

// Stats groups all aggregations over a list of blogs. Absent results
// (empty input) are nil and end up as null in json.
type Stats struct {
	Count        int       `json:"count"`
	TotalLikes   int       `json:"totalLikes"`
	FavoriteBlog *Favorite `json:"favoriteBlog"`
	MostBlogs    *Blogger  `json:"mostBlogs"`
}

// Dummy always returns 1.
func Dummy(_ []*Blog) int {
	return 1
}

func TotalLikes(blogs []*Blog) int {
	total := 0
	for _, b := range blogs {
		if b == nil {
			continue
		}
		total += b.Likes
	}
	return total
}

// FavoriteBlog returns the blog with the most likes. On ties the first
// one in the list wins. The bool is false for an empty list.
func FavoriteBlog(blogs []*Blog) (Favorite, bool) {
	var max *Blog
	for _, b := range blogs {
		if b == nil {
			continue
		}
		if max == nil || b.Likes > max.Likes {
			max = b
		}
	}
	if max == nil {
		return Favorite{}, false
	}
	return Favorite{
		Title:  max.Title,
		Author: max.Author,
		Likes:  max.Likes,
	}, true
}

// MostBlogs returns the author with the most blogs. Authors are compared
// by exact string, and on ties the author seen first wins. The bool is
// false for an empty list.
func MostBlogs(blogs []*Blog) (Blogger, bool) {
	var authors []string
	counts := make(map[string]int)
	for _, b := range blogs {
		if b == nil {
			continue
		}
		if _, seen := counts[b.Author]; !seen {
			authors = append(authors, b.Author)
		}
		counts[b.Author]++
	}
	if len(authors) == 0 {
		return Blogger{}, false
	}

	most := Blogger{Author: authors[0], Blogs: counts[authors[0]]}
	for _, author := range authors[1:] {
		if counts[author] > most.Blogs {
			most = Blogger{Author: author, Blogs: counts[author]}
		}
	}
	return most, true
}

func Summarize(blogs []*Blog) Stats {
	stats := Stats{
		TotalLikes: TotalLikes(blogs),
	}
	for _, b := range blogs {
		if b != nil {
			stats.Count++
		}
	}
	if favorite, ok := FavoriteBlog(blogs); ok {
		stats.FavoriteBlog = &favorite
	}
	if most, ok := MostBlogs(blogs); ok {
		stats.MostBlogs = &most
	}
	return stats
}
