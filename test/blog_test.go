//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/2beens/bloglist/internal/blog"
)

var initialBlogs = []map[string]any{
	{
		"title":  "React patterns",
		"author": "Michael Chan",
		"url":    "https://reactpatterns.com/",
		"likes":  7,
	},
	{
		"title":  "Go To Statement Considered Harmful",
		"author": "Edsger W. Dijkstra",
		"url":    "http://www.u.arizona.edu/~rubinson/copyright_violations/Go_To_Considered_Harmful.html",
		"likes":  5,
	},
}

func (s *IntegrationTestSuite) seedBlogs(ctx context.Context) {
	for _, b := range initialBlogs {
		s.createBlog(ctx, "", b)
	}
}

func (s *IntegrationTestSuite) TestBlogs_List() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp, respBytes := s.doRequest(ctx, "GET", "/api/blogs", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "application/json")
	s.Equal("[]", string(respBytes))

	s.seedBlogs(ctx)

	_, respBytes = s.doRequest(ctx, "GET", "/api/blogs", "", nil)
	var raw []map[string]any
	s.Require().NoError(json.Unmarshal(respBytes, &raw))
	s.Require().Len(raw, len(initialBlogs))
	for i, b := range raw {
		s.NotEmpty(b["id"])
		s.NotContains(b, "_id")
		s.Equal(initialBlogs[i]["title"], b["title"])
	}
}

func (s *IntegrationTestSuite) TestBlogs_Create() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.seedBlogs(ctx)

	s.Run("valid blog is added", func() {
		before := s.getAllBlogs(ctx)
		created := s.createBlog(ctx, "", map[string]any{
			"title":  "async/await simplifies making async calls",
			"author": "Test Author",
			"url":    "https://test.example/async",
			"likes":  3,
		})
		s.NotEmpty(created.ID)
		s.Nil(created.User)

		after := s.getAllBlogs(ctx)
		s.Require().Len(after, len(before)+1)
		s.Equal("async/await simplifies making async calls", after[len(after)-1].Title)
	})

	s.Run("likes default to zero", func() {
		created := s.createBlog(ctx, "", map[string]any{
			"title": "no likes",
			"url":   "https://test.example/nolikes",
		})
		s.Equal(0, created.Likes)
	})

	s.Run("missing title or url is rejected", func() {
		before := s.getAllBlogs(ctx)
		for _, body := range []map[string]any{
			{"author": "Test Author", "url": "https://test.example"},
			{"title": "no url", "author": "Test Author"},
		} {
			resp, respBytes := s.doRequest(ctx, "POST", "/api/blogs", "", body)
			s.Equal(http.StatusBadRequest, resp.StatusCode)
			s.Empty(respBytes)
		}
		s.Len(s.getAllBlogs(ctx), len(before))
	})

	s.Run("logged in user becomes the owner", func() {
		user := s.createUser(ctx, testUsername, testName, testPassword)
		token := s.doLogin(ctx, testUsername, testPassword)

		created := s.createBlog(ctx, token, map[string]any{
			"title": "owned blog",
			"url":   "https://test.example/owned",
		})
		s.Require().NotNil(created.User)
		s.Equal(blog.Owner{ID: user.ID, Username: testUsername, Name: testName}, *created.User)

		resp, respBytes := s.doRequest(ctx, "GET", "/api/blogs/"+created.ID, "", nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var stored blog.Blog
		s.Require().NoError(json.Unmarshal(respBytes, &stored))
		s.Require().NotNil(stored.User)
		s.Equal(user.ID, stored.User.ID)

		// and the blog shows up in the users listing
		resp, respBytes = s.doRequest(ctx, "GET", "/api/users", "", nil)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		var allUsers []struct {
			ID    string `json:"id"`
			Blogs []struct {
				ID string `json:"id"`
			} `json:"blogs"`
		}
		s.Require().NoError(json.Unmarshal(respBytes, &allUsers))
		s.Require().Len(allUsers, 1)
		s.Require().Len(allUsers[0].Blogs, 1)
		s.Equal(created.ID, allUsers[0].Blogs[0].ID)
	})
}

func (s *IntegrationTestSuite) TestBlogs_Delete() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.seedBlogs(ctx)

	before := s.getAllBlogs(ctx)
	toDelete := before[0]

	resp, respBytes := s.doRequest(ctx, "DELETE", "/api/blogs/"+toDelete.ID, "", nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)
	s.Empty(respBytes)

	after := s.getAllBlogs(ctx)
	s.Len(after, len(before)-1)
	for _, b := range after {
		s.NotEqual(toDelete.Title, b.Title)
	}

	resp, _ = s.doRequest(ctx, "DELETE", "/api/blogs/"+uuid.NewString(), "", nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp, _ = s.doRequest(ctx, "DELETE", "/api/blogs/5a3d5da59070081a82a3445b", "", nil)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestBlogs_Update() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.seedBlogs(ctx)

	toUpdate := s.getAllBlogs(ctx)[0]
	resp, respBytes := s.doRequest(ctx, "PUT", "/api/blogs/"+toUpdate.ID, "", map[string]any{
		"title":  toUpdate.Title,
		"author": toUpdate.Author,
		"url":    toUpdate.URL,
		"likes":  toUpdate.Likes + 10,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var updated blog.Blog
	s.Require().NoError(json.Unmarshal(respBytes, &updated))
	s.Equal(toUpdate.Likes+10, updated.Likes)

	resp, respBytes = s.doRequest(ctx, "GET", "/api/blogs/"+toUpdate.ID, "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	var refetched blog.Blog
	s.Require().NoError(json.Unmarshal(respBytes, &refetched))
	s.Equal(toUpdate.Likes+10, refetched.Likes)

	resp, _ = s.doRequest(ctx, "PUT", "/api/blogs/"+uuid.NewString(), "", map[string]any{
		"title": "t",
		"url":   "u",
	})
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *IntegrationTestSuite) TestBlogs_Stats() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	resp, respBytes := s.doRequest(ctx, "GET", "/api/blogs/stats", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{"count":0,"totalLikes":0,"favoriteBlog":null,"mostBlogs":null}`, string(respBytes))

	s.seedBlogs(ctx)

	resp, respBytes = s.doRequest(ctx, "GET", "/api/blogs/stats", "", nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.JSONEq(`{
		"count": 2,
		"totalLikes": 12,
		"favoriteBlog": {"title":"React patterns","author":"Michael Chan","likes":7},
		"mostBlogs": {"author":"Michael Chan","blogs":1}
	}`, string(respBytes))
}
