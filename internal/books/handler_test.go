package books

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"epubshelf/pkg/epub"
	"epubshelf/pkg/epub/epubtest"
	"epubshelf/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var sampleBook = epubtest.Book{
	Title:    "Sample",
	Creators: []string{"Ada", "Grace"},
	Language: "en",
	Chapters: []epubtest.Chapter{
		{Name: "intro.xhtml", Title: "Intro", Body: "<h1>Welcome</h1><p>Hello <em>reader</em>.</p>"},
		{Name: "text/chapter 1.xhtml", Title: "One", Body: "<p>First chapter.</p>"},
		{Name: "ch2.xhtml", Title: "Two", Body: "<p>Second chapter.</p>"},
	},
	TOC: []epubtest.NavPoint{
		{Title: "Intro", Href: "intro.xhtml"},
		{Title: "Part I", Href: "text/chapter%201.xhtml", Children: []epubtest.NavPoint{
			{Title: "One", Href: "text/chapter%201.xhtml#start"},
			{Title: "Two", Href: "ch2.xhtml"},
		}},
	},
}

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	epubtest.Write(t, dir, "sample.epub", sampleBook.Files())

	r := gin.New()
	NewHandler(NewStore(dir), ParserFunc(OpenEPUB), zap.NewNop()).RegisterRoutes(r.Group("/api"))
	return r, dir
}

func get(t *testing.T, r http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, code, w.Body.String())
	}
	var body map[string]string
	decode(t, w, &body)
	if msg != "" && body["error"] != msg {
		t.Errorf("error = %q, want %q", body["error"], msg)
	}
	if body["error"] == "" {
		t.Error("error body is empty")
	}
}

func TestHandler_ListBooks(t *testing.T) {
	r, dir := newTestRouter(t)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	epubtest.Write(t, dir, "another.epub", sampleBook.Files())

	w := get(t, r, "/api/books")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got []models.Book
	decode(t, w, &got)
	if len(got) != 2 || got[0].ID != "another.epub" || got[1].ID != "sample.epub" || got[1].Name != "sample.epub" {
		t.Errorf("books = %+v", got)
	}
}

func TestHandler_ListBooksMissingDir(t *testing.T) {
	r := gin.New()
	NewHandler(NewStore(filepath.Join(t.TempDir(), "gone")), ParserFunc(OpenEPUB), zap.NewNop()).RegisterRoutes(r.Group("/api"))

	w := get(t, r, "/api/books")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("got %d %s, want 200 []", w.Code, w.Body.String())
	}
}

func TestHandler_TOC(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(t, r, "/api/book/sample.epub/toc")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	var got []models.TOCEntry
	decode(t, w, &got)

	want := []struct {
		title, href, parent string
	}{
		{"Intro", "intro.xhtml", ""},
		{"Part I", "text/chapter%201.xhtml", ""},
		{"One", "text/chapter%201.xhtml#start", "Part I"},
		{"Two", "ch2.xhtml", "Part I"},
	}
	if len(got) != len(want) {
		t.Fatalf("toc = %+v", got)
	}
	for i, w := range want {
		e := got[i]
		if e.ID != i || e.Title != w.title || e.Href != w.href {
			t.Errorf("entry %d = %+v", i, e)
		}
		if (w.parent == "") != (e.Parent == nil) || (e.Parent != nil && *e.Parent != w.parent) {
			t.Errorf("entry %d parent = %v, want %q", i, e.Parent, w.parent)
		}
	}
}

func TestHandler_TOCParentSerialization(t *testing.T) {
	r, _ := newTestRouter(t)

	var raw []map[string]any
	decode(t, get(t, r, "/api/book/sample.epub/toc"), &raw)
	if v, ok := raw[0]["parent"]; !ok || v != nil {
		t.Errorf("top-level parent = %v (present %v), want explicit null", v, ok)
	}
}

func TestHandler_Chapter(t *testing.T) {
	r, _ := newTestRouter(t)
	files := sampleBook.Files()

	for idx, want := range []string{"intro.xhtml", "text/chapter 1.xhtml", "ch2.xhtml"} {
		w := get(t, r, "/api/book/sample.epub/chapter/"+strconv.Itoa(idx))
		if w.Code != http.StatusOK {
			t.Fatalf("chapter %d: status = %d (body %s)", idx, w.Code, w.Body.String())
		}
		var got models.Chapter
		decode(t, w, &got)
		if got.Title != want {
			t.Errorf("chapter %d title = %q, want %q", idx, got.Title, want)
		}
		if got.Content != files["OEBPS/"+want] {
			t.Errorf("chapter %d content = %q", idx, got.Content)
		}
	}
}

func TestHandler_ChapterFormats(t *testing.T) {
	r, _ := newTestRouter(t)

	var text models.Chapter
	decode(t, get(t, r, "/api/book/sample.epub/chapter/0?format=text"), &text)
	if text.Content != "Welcome Hello reader." {
		t.Errorf("text content = %q", text.Content)
	}

	var md models.Chapter
	decode(t, get(t, r, "/api/book/sample.epub/chapter/0?format=markdown"), &md)
	if !strings.Contains(md.Content, "# Welcome") || !strings.Contains(md.Content, "*reader*") {
		t.Errorf("markdown content = %q", md.Content)
	}

	assertError(t, get(t, r, "/api/book/sample.epub/chapter/0?format=pdf"), http.StatusBadRequest, "")
}

func TestHandler_NotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, target := range []string{
		"/api/book/missing.epub/toc",
		"/api/book/missing.epub/meta",
		"/api/book/missing.epub/chapter/0",
		"/api/book/missing.epub/chapter/abc",
		"/api/book/..%2Fsample.epub/toc",
		"/api/book/../toc",
	} {
		w := get(t, r, target)
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", target, w.Code)
			continue
		}
		if strings.HasPrefix(target, "/api/book/missing") {
			assertError(t, w, http.StatusNotFound, "Book not found")
		}
	}
}

func TestHandler_ChapterIndexOutOfRange(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, idx := range []string{"3", "99", "-1", "99999999999999999999", "-99999999999999999999"} {
		assertError(t, get(t, r, "/api/book/sample.epub/chapter/"+idx), http.StatusNotFound, "Chapter not found")
	}
}

func TestHandler_ChapterIndexNotInteger(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, idx := range []string{"abc", "1.5", "0x1"} {
		assertError(t, get(t, r, "/api/book/sample.epub/chapter/"+idx), http.StatusUnprocessableEntity, "")
	}
}

func TestHandler_CorruptBook(t *testing.T) {
	r, dir := newTestRouter(t)
	if err := os.WriteFile(filepath.Join(dir, "broken.epub"), []byte("this is not a zip archive"), 0o644); err != nil {
		t.Fatal(err)
	}

	assertError(t, get(t, r, "/api/book/broken.epub/toc"), http.StatusInternalServerError, "failed to parse book")
	assertError(t, get(t, r, "/api/book/broken.epub/chapter/0"), http.StatusInternalServerError, "failed to parse book")
	assertError(t, get(t, r, "/api/book/broken.epub/meta"), http.StatusInternalServerError, "failed to parse book")
}

func TestHandler_ChapterInvalidUTF8(t *testing.T) {
	r, dir := newTestRouter(t)
	bad := epubtest.Book{
		Title:    "Bad",
		Chapters: []epubtest.Chapter{{Name: "bad.xhtml", Body: "<p>\xff\xfe</p>"}},
	}
	epubtest.Write(t, dir, "bad.epub", bad.Files())

	assertError(t, get(t, r, "/api/book/bad.epub/chapter/0"), http.StatusInternalServerError, ErrDecode.Error())
}

func TestHandler_EmptyTOC(t *testing.T) {
	r, dir := newTestRouter(t)
	epubtest.Write(t, dir, "plain.epub", epubtest.Book{
		Title:    "Plain",
		Chapters: []epubtest.Chapter{{Name: "a.xhtml", Body: "<p>a</p>"}},
	}.Files())

	w := get(t, r, "/api/book/plain.epub/toc")
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("got %d %s, want 200 []", w.Code, w.Body.String())
	}
}

func TestHandler_Meta(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(t, r, "/api/book/sample.epub/meta")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}
	var got models.BookMeta
	decode(t, w, &got)
	if got.ID != "sample.epub" || got.Title != "Sample" || got.Language != "en" || got.Identifier != "urn:test:Sample" {
		t.Errorf("meta = %+v", got)
	}
	if len(got.Authors) != 2 || got.Authors[0] != "Ada" || got.Authors[1] != "Grace" {
		t.Errorf("authors = %v", got.Authors)
	}
	if got.Version != "2.0" {
		t.Errorf("version = %q", got.Version)
	}
}

func TestHandler_DirectoryBook(t *testing.T) {
	r, dir := newTestRouter(t)
	if err := os.Mkdir(filepath.Join(dir, "folder.epub"), 0o755); err != nil {
		t.Fatal(err)
	}

	assertError(t, get(t, r, "/api/book/folder.epub/toc"), http.StatusInternalServerError, "failed to parse book")
}

type stubBook struct {
	docs   []epub.Item
	closed bool
}

func (b *stubBook) TOC() []epub.NavNode     { return nil }
func (b *stubBook) Documents() []epub.Item  { return b.docs }
func (b *stubBook) Metadata() epub.Metadata { return epub.Metadata{Title: "Stub"} }
func (b *stubBook) Close() error {
	b.closed = true
	return nil
}

func newStubRouter(t *testing.T, parser Parser) *gin.Engine {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stub.epub"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := gin.New()
	NewHandler(NewStore(dir), parser, zap.NewNop()).RegisterRoutes(r.Group("/api"))
	return r
}

func TestHandler_ParserError(t *testing.T) {
	var opened string
	r := newStubRouter(t, ParserFunc(func(path string) (Book, error) {
		opened = path
		return nil, errors.New("boom")
	}))

	assertError(t, get(t, r, "/api/book/stub.epub/meta"), http.StatusInternalServerError, "failed to parse book")
	if filepath.Base(opened) != "stub.epub" {
		t.Errorf("parser opened %q", opened)
	}
}

func TestHandler_ParserBookClosed(t *testing.T) {
	book := &stubBook{docs: []epub.Item{{ID: "a", Name: "a.xhtml", MediaType: epub.DocumentMediaType}}}
	r := newStubRouter(t, ParserFunc(func(string) (Book, error) { return book, nil }))

	var meta models.BookMeta
	w := get(t, r, "/api/book/stub.epub/meta")
	decode(t, w, &meta)
	if meta.Title != "Stub" || meta.Authors == nil {
		t.Errorf("meta = %+v", meta)
	}
	if !book.closed {
		t.Error("book was not closed after the request")
	}

	// an item detached from any archive cannot be read
	book.closed = false
	assertError(t, get(t, r, "/api/book/stub.epub/chapter/0"), http.StatusInternalServerError, "failed to read chapter")
	if !book.closed {
		t.Error("book was not closed after a failed chapter read")
	}
}
