package main

//// Small CLI tool printing the stats of a blog list JSON export, and optionally
//// importing the export into the database.

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/bloglist/internal/blog"
	"github.com/2beens/bloglist/internal/db"
	"github.com/2beens/bloglist/pkg"
)

type options struct {
	filePath string
	url      string
	doImport bool
	pgHost   string
	pgPort   string
	pgDBName string
	pgUser   string
	verbose  bool
}

func main() {
	opts, err := parseAndValidateInput()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if opts.verbose {
		log.SetLevel(log.DebugLevel)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	input, err := openInput(ctx, opts)
	if err != nil {
		log.Fatalf("open input: %s", err)
	}
	defer func() {
		if err := input.Close(); err != nil {
			log.Warnf("close input: %s", err)
		}
	}()

	blogs, err := blog.DecodeExport(input)
	if err != nil {
		log.Fatalf("decode export: %s", err)
	}
	log.Debugf("decoded %d blogs", len(blogs))

	statsJSON, err := json.MarshalIndent(blog.Summarize(blogs), "", "  ")
	if err != nil {
		log.Fatalf("marshal stats: %s", err)
	}
	fmt.Println(string(statsJSON))

	if !opts.doImport {
		return
	}

	imported, failed := importBlogs(ctx, opts, blogs)
	log.Infof("imported %d blogs, %d failed", imported, failed)
	if failed > 0 {
		os.Exit(2)
	}
}

func parseAndValidateInput() (*options, error) {
	opts := &options{}
	flag.StringVar(&opts.filePath, "file", "", "path of the JSON export, - for stdin")
	flag.StringVar(&opts.url, "url", "", "URL serving the JSON export, e.g. http://localhost:9000/api/blogs")
	flag.BoolVar(&opts.doImport, "import", false, "store the decoded blogs in postgres")
	flag.StringVar(&opts.pgHost, "pg-host", "localhost", "postgres host, used with -import")
	flag.StringVar(&opts.pgPort, "pg-port", "5432", "postgres port, used with -import")
	flag.StringVar(&opts.pgDBName, "pg-db", "bloglist", "postgres db name, used with -import")
	flag.StringVar(&opts.pgUser, "pg-user", "postgres", "postgres user, used with -import")
	flag.BoolVar(&opts.verbose, "v", false, "verbose output")
	flag.Parse()

	switch {
	case opts.filePath == "" && opts.url == "":
		return nil, errors.New("one of -file or -url is required")
	case opts.filePath != "" && opts.url != "":
		return nil, errors.New("-file and -url are mutually exclusive")
	case opts.filePath != "" && opts.filePath != "-":
		exists, err := pkg.PathExists(opts.filePath, false)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, fmt.Errorf("export file %s does not exist", opts.filePath)
		}
	}
	return opts, nil
}

func openInput(ctx context.Context, opts *options) (io.ReadCloser, error) {
	if opts.url == "" {
		if opts.filePath == "-" {
			return io.NopCloser(os.Stdin), nil
		}
		return os.Open(opts.filePath)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get export: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("get export: unexpected status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// importBlogs stores the blogs without owners, since exported user ids do
// not map to local users.
func importBlogs(ctx context.Context, opts *options, blogs []*blog.Blog) (imported, failed int) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     opts.pgHost,
		DBPort:     opts.pgPort,
		DBName:     opts.pgDBName,
		DBUser:     opts.pgUser,
		DBPassword: os.Getenv("BLOGLIST_POSTGRES_PASS"),
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	if err := db.EnsureSchema(ctx, dbPool); err != nil {
		log.Fatalf("%s", err)
	}

	repo := blog.NewRepo(dbPool)
	for _, b := range blogs {
		b.User = nil
		exportedID := b.ID
		if err := repo.Add(ctx, b); err != nil {
			log.Errorf("--- failed to import blog [%s] [%s]: %s", exportedID, b.Title, err)
			failed++
			continue
		}
		log.Debugf("+++ imported blog [%s] as [%s]", exportedID, b.ID)
		imported++
	}
	return imported, failed
}
