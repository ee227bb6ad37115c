package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"epubshelf/pkg/models"
)

const defaultBaseURL = "http://127.0.0.1:8000"

type apiError struct {
	Error string `json:"error"`
}

func main() {
	global := flag.NewFlagSet("epubshelf", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	client := &http.Client{Timeout: 15 * time.Second}
	api := strings.TrimRight(*baseURL, "/") + "/api"

	switch args[0] {
	case "books":
		handleBooks(ctx, client, api)
	case "toc":
		handleTOC(ctx, client, api, args[1:])
	case "chapter":
		handleChapter(ctx, client, api, args[1:])
	case "meta":
		handleMeta(ctx, client, api, args[1:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleBooks(ctx context.Context, client *http.Client, api string) {
	var resp []models.Book
	if err := doJSON(ctx, client, api+"/books", &resp); err != nil {
		log.Fatalf("list failed: %v", err)
	}
	for _, b := range resp {
		fmt.Println(b.ID)
	}
}

func handleTOC(ctx context.Context, client *http.Client, api string, args []string) {
	fs := flag.NewFlagSet("toc", flag.ExitOnError)
	book := fs.String("book", "", "book id (file name)")
	asJSON := fs.Bool("json", false, "print raw JSON")
	_ = fs.Parse(args)
	if *book == "" {
		log.Fatal("book is required")
	}

	var resp []models.TOCEntry
	if err := doJSON(ctx, client, bookURL(api, *book, "toc"), &resp); err != nil {
		log.Fatalf("toc failed: %v", err)
	}
	if *asJSON {
		printJSON(resp)
		return
	}

	// indent children under their parent
	depth := map[string]int{}
	for _, e := range resp {
		d := 0
		if e.Parent != nil {
			d = depth[*e.Parent] + 1
		}
		depth[e.Title] = d
		fmt.Printf("%4d  %s%s  (%s)\n", e.ID, strings.Repeat("  ", d), e.Title, e.Href)
	}
}

func handleChapter(ctx context.Context, client *http.Client, api string, args []string) {
	fs := flag.NewFlagSet("chapter", flag.ExitOnError)
	book := fs.String("book", "", "book id (file name)")
	idx := fs.Int("idx", 0, "chapter index")
	format := fs.String("format", "text", "raw, text or markdown")
	asJSON := fs.Bool("json", false, "print raw JSON")
	_ = fs.Parse(args)
	if *book == "" {
		log.Fatal("book is required")
	}

	u, err := url.Parse(bookURL(api, *book, "chapter", fmt.Sprintf("%d", *idx)))
	if err != nil {
		log.Fatalf("invalid base url: %v", err)
	}
	qv := u.Query()
	qv.Set("format", *format)
	u.RawQuery = qv.Encode()

	var resp models.Chapter
	if err := doJSON(ctx, client, u.String(), &resp); err != nil {
		log.Fatalf("chapter failed: %v", err)
	}
	if *asJSON {
		printJSON(resp)
		return
	}
	fmt.Printf("== %s ==\n\n%s\n", resp.Title, resp.Content)
}

func handleMeta(ctx context.Context, client *http.Client, api string, args []string) {
	fs := flag.NewFlagSet("meta", flag.ExitOnError)
	book := fs.String("book", "", "book id (file name)")
	_ = fs.Parse(args)
	if *book == "" {
		log.Fatal("book is required")
	}

	var resp models.BookMeta
	if err := doJSON(ctx, client, bookURL(api, *book, "meta"), &resp); err != nil {
		log.Fatalf("meta failed: %v", err)
	}
	printJSON(resp)
}

func bookURL(api, book string, parts ...string) string {
	return api + "/book/" + url.PathEscape(book) + "/" + strings.Join(parts, "/")
}

func doJSON(ctx context.Context, client *http.Client, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s (HTTP %d)", apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("GET %s failed: %s", endpoint, strings.TrimSpace(string(data)))
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func printUsage() {
	fmt.Println("epubshelf [-api URL] <command> [flags]")
	fmt.Println("commands:")
	fmt.Println("  books")
	fmt.Println("  toc -book ID [-json]")
	fmt.Println("  chapter -book ID -idx N [-format raw|text|markdown] [-json]")
	fmt.Println("  meta -book ID")
}
