package books

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"epubshelf/internal/middleware"
	"epubshelf/pkg/epub"
	"epubshelf/pkg/models"
)

type Handler struct {
	Store  *Store
	Parser Parser
	Log    *zap.Logger
}

func NewHandler(store *Store, parser Parser, log *zap.Logger) *Handler {
	return &Handler{Store: store, Parser: parser, Log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/books", h.list)                                 // GET /api/books
	rg.GET("/book/:book_id/toc", h.toc)                      // GET /api/book/:book_id/toc
	rg.GET("/book/:book_id/chapter/:chapter_idx", h.chapter) // GET /api/book/:book_id/chapter/:chapter_idx
	rg.GET("/book/:book_id/meta", h.meta)                    // GET /api/book/:book_id/meta
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Store.List()
	if err != nil {
		// listing never fails for the client, an unreadable directory is empty
		h.logger(c).Warn("Unable to list books", zap.String("dir", h.Store.Dir), zap.Error(err))
		items = []models.Book{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) toc(c *gin.Context) {
	bookID := c.Param("book_id")
	book, ok := h.open(c, bookID)
	if !ok {
		return
	}
	defer h.close(c, bookID, book)

	c.JSON(http.StatusOK, FlattenTOC(book.TOC()))
}

func (h *Handler) chapter(c *gin.Context) {
	bookID := c.Param("book_id")
	path, ok := h.resolve(c, bookID)
	if !ok {
		return
	}

	idx, err := strconv.Atoi(c.Param("chapter_idx"))
	switch {
	case errors.Is(err, strconv.ErrRange):
		// an integer, just not one that can name a chapter
		c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
		return
	case err != nil:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "chapter_idx must be an integer"})
		return
	}
	format := c.DefaultQuery("format", FormatRaw)
	if !ValidFormat(format) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be one of raw, text, markdown"})
		return
	}

	book, ok := h.parse(c, bookID, path)
	if !ok {
		return
	}
	defer h.close(c, bookID, book)

	docs := book.Documents()
	if idx < 0 || idx >= len(docs) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Chapter not found"})
		return
	}
	item := docs[idx]

	raw, err := item.Content()
	if err != nil {
		h.logger(c).Error("Unable to read chapter", zap.String("book", bookID), zap.Int("chapter", idx), zap.String("name", item.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read chapter"})
		return
	}
	content, err := DecodeChapter(raw)
	if err != nil {
		h.logger(c).Error("Unable to decode chapter", zap.String("book", bookID), zap.Int("chapter", idx), zap.String("name", item.Name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": ErrDecode.Error()})
		return
	}
	if content, err = Render(content, format); err != nil {
		h.logger(c).Error("Unable to render chapter", zap.String("book", bookID), zap.Int("chapter", idx), zap.String("format", format), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render chapter"})
		return
	}

	c.JSON(http.StatusOK, models.Chapter{Title: item.Name, Content: content})
}

func (h *Handler) meta(c *gin.Context) {
	bookID := c.Param("book_id")
	book, ok := h.open(c, bookID)
	if !ok {
		return
	}
	defer h.close(c, bookID, book)

	md := book.Metadata()
	authors := md.Creators
	if authors == nil {
		authors = []string{}
	}
	c.JSON(http.StatusOK, models.BookMeta{
		ID:         bookID,
		Title:      md.Title,
		Authors:    authors,
		Language:   md.Language,
		Identifier: md.Identifier,
		Version:    md.Version,
	})
}

// open resolves and parses a book, writing the error response itself when
// either step fails.
func (h *Handler) open(c *gin.Context, bookID string) (Book, bool) {
	path, ok := h.resolve(c, bookID)
	if !ok {
		return nil, false
	}
	return h.parse(c, bookID, path)
}

func (h *Handler) resolve(c *gin.Context, bookID string) (string, bool) {
	path, err := h.Store.Resolve(bookID)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Book not found"})
		return "", false
	}
	if err != nil {
		h.logger(c).Error("Unable to resolve book", zap.String("book", bookID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve book"})
		return "", false
	}
	return path, true
}

func (h *Handler) parse(c *gin.Context, bookID, path string) (Book, bool) {
	book, err := h.Parser.Open(path)
	if err != nil {
		h.logger(c).Error("Unable to parse book", zap.String("book", bookID), zap.Bool("invalid", errors.Is(err, epub.ErrInvalidEPub)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to parse book"})
		return nil, false
	}
	return book, true
}

func (h *Handler) close(c *gin.Context, bookID string, book Book) {
	if err := book.Close(); err != nil {
		h.logger(c).Warn("Unable to close book", zap.String("book", bookID), zap.Error(err))
	}
}

func (h *Handler) logger(c *gin.Context) *zap.Logger {
	return h.Log.With(zap.String("request_id", middleware.RequestID(c)))
}
