package handler

import (
	"io"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pechorka/readstreak/internal/achievement"
	"github.com/pechorka/readstreak/internal/activity"
	"github.com/pechorka/readstreak/internal/handler/internal/request"
	"github.com/pechorka/readstreak/internal/handler/internal/respond"
	"github.com/pechorka/readstreak/internal/library"
	"github.com/pechorka/readstreak/internal/notes"
	"github.com/pechorka/readstreak/internal/stats"
	"github.com/pechorka/readstreak/internal/storage"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

type Stats interface {
	Stats() stats.UserStats
	RecordActivity()
	IncrementMinutesRead(minutes float64)
	IncrementMinutesListened(minutes float64)
}

type Library interface {
	Import(nb library.NewBook) (library.Book, error)
	List() ([]library.Book, error)
	Get(id string) (library.Book, error)
	Content(id string) (library.Book, []byte, error)
	Remove(id string) error
	UpdateProgress(id string, percent float64) (library.Book, error)
	SetDuration(id string, seconds float64) (library.Book, error)
}

type Notes interface {
	Add(bookID, text string) (notes.Note, error)
	Update(id, text string) (notes.Note, error)
	Delete(id string) error
	DeleteForBook(bookID string) (int, error)
	ForBook(bookID string) ([]notes.Note, error)
}

type ReadingTimer interface {
	Start(bookID string)
	Stop()
	Touch()
	Current() (string, bool)
}

type ListeningTracker interface {
	Start(bookID string, savedProgress, durationSeconds float64)
	Stop()
	Current() (string, bool)
	Update(positionSeconds, durationSeconds float64) (float64, error)
}

// Translator localizes achievement texts and lists the languages it knows.
type Translator interface {
	achievement.Translator
	Languages() []string
}

type Config struct {
	Stats       Stats
	Library     Library
	Notes       Notes
	Reading     ReadingTimer
	Listening   ListeningTracker
	Translator  Translator
	Logger      *zap.Logger
	MaxFileSize int64
}

type Handlers struct {
	stats       Stats
	lib         Library
	notes       Notes
	reading     ReadingTimer
	listening   ListeningTracker
	tr          Translator
	logger      *zap.Logger
	maxFileSize int64
}

const (
	defaultMaxFileSize = 20 * 1024 * 1024
	// builtinLang is the language of the texts compiled into the achievement table.
	builtinLang = "en"
)

func NewHandlers(cfg Config) *Handlers {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxFileSize == 0 {
		cfg.MaxFileSize = defaultMaxFileSize
	}
	return &Handlers{
		stats:       cfg.Stats,
		lib:         cfg.Library,
		notes:       cfg.Notes,
		reading:     cfg.Reading,
		listening:   cfg.Listening,
		tr:          cfg.Translator,
		logger:      cfg.Logger,
		maxFileSize: cfg.MaxFileSize,
	}
}

func (h *Handlers) Register(mx chi.Router) {
	mx.Get("/stats", h.GetStats)
	mx.Get("/achievements", h.GetAchievements)
	mx.Post("/activity", h.RecordActivity)
	mx.Post("/minutes/read", h.AddMinutesRead)
	mx.Post("/minutes/listened", h.AddMinutesListened)

	mx.Get("/books", h.ListBooks)
	mx.Post("/books", h.ImportBook)
	mx.Get("/books/{id}/content", h.BookContent)
	mx.Delete("/books/{id}", h.RemoveBook)
	mx.Put("/books/{id}/progress", h.UpdateProgress)
	mx.Post("/books/{id}/complete", h.CompleteBook)
	mx.Post("/books/{id}/listen/start", h.StartListening)
	mx.Post("/books/{id}/listen", h.UpdateListening)

	mx.Post("/reading/start", h.StartReading)
	mx.Post("/reading/touch", h.TouchReading)
	mx.Post("/reading/stop", h.StopReading)

	mx.Get("/books/{id}/notes", h.ListNotes)
	mx.Post("/books/{id}/notes", h.AddNote)
	mx.Put("/notes/{id}", h.UpdateNote)
	mx.Delete("/notes/{id}", h.DeleteNote)
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, h.stats.Stats())
}

type GetAchievementsResponse struct {
	Achievements []achievement.Achievement `json:"achievements"`
	achievement.Summary
}

func (h *Handlers) GetAchievements(w http.ResponseWriter, r *http.Request) {
	list := achievement.Evaluate(h.stats.Stats())
	if lang := r.URL.Query().Get("lang"); lang != "" {
		if !h.supportsLang(lang) {
			respond.RespondErrorWithText(w, http.StatusBadRequest, respond.CODE_UNSUPPORTED_LANGUAGE, "unsupported language "+lang)
			return
		}
		if h.tr != nil {
			list = achievement.Localize(list, h.tr, lang)
		}
	}
	respond.JSON(w, GetAchievementsResponse{
		Achievements: list,
		Summary:      achievement.Summarize(list),
	})
}

func (h *Handlers) supportsLang(lang string) bool {
	if lang == builtinLang {
		return true
	}
	return h.tr != nil && slices.Contains(h.tr.Languages(), lang)
}

func (h *Handlers) RecordActivity(w http.ResponseWriter, r *http.Request) {
	h.stats.RecordActivity()
	respond.JSON(w, h.stats.Stats())
}

type MinutesRequest struct {
	Minutes float64 `json:"minutes"`
}

func (h *Handlers) AddMinutesRead(w http.ResponseWriter, r *http.Request) {
	minutes, ok := decodeMinutes(w, r)
	if !ok {
		return
	}
	activity.CreditRead(h.stats, minutes)
	respond.JSON(w, h.stats.Stats())
}

func (h *Handlers) AddMinutesListened(w http.ResponseWriter, r *http.Request) {
	minutes, ok := decodeMinutes(w, r)
	if !ok {
		return
	}
	activity.CreditListened(h.stats, minutes)
	respond.JSON(w, h.stats.Stats())
}

func decodeMinutes(w http.ResponseWriter, r *http.Request) (float64, bool) {
	var req MinutesRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		respond.ErrorWithCode(w, http.StatusBadRequest, respond.CODE_INVALID_JSON)
		return 0, false
	}
	if !(req.Minutes > 0) || math.IsInf(req.Minutes, 1) {
		respond.ErrorWithCode(w, http.StatusBadRequest, respond.CODE_INVALID_MINUTES)
		return 0, false
	}
	return req.Minutes, true
}

type ListBooksResponse struct {
	Books []library.Book `json:"books"`
}

func (h *Handlers) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.lib.List()
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond.JSON(w, ListBooksResponse{Books: books})
}

// ImportBook takes the file as the raw request body. The title comes from the
// name query parameter and the file type from the Content-Type header.
func (h *Handlers) ImportBook(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxFileSize))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	book, err := h.lib.Import(library.NewBook{
		Title:       q.Get("name"),
		Filename:    q.Get("filename"),
		ContentType: r.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond.Created(w, book)
}

func (h *Handlers) BookContent(w http.ResponseWriter, r *http.Request) {
	book, data, err := h.lib.Content(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	contentType := book.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write book content", zap.String("book_id", book.ID), zap.Error(err))
	}
}

// RemoveBook deletes the book with its notes and stops any session on it.
func (h *Handlers) RemoveBook(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.lib.Remove(id); err != nil {
		h.respondError(w, r, err)
		return
	}
	if current, ok := h.reading.Current(); ok && current == id {
		h.reading.Stop()
	}
	if current, ok := h.listening.Current(); ok && current == id {
		h.listening.Stop()
	}
	if removed, err := h.notes.DeleteForBook(id); err != nil {
		h.logger.Error("failed to delete notes of removed book", zap.String("book_id", id), zap.Error(err))
	} else if removed > 0 {
		h.logger.Debug("deleted notes of removed book", zap.String("book_id", id), zap.Int("count", removed))
	}
	respond.NoContent(w)
}

type ProgressRequest struct {
	Progress float64 `json:"progress"`
}

func (h *Handlers) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req ProgressRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		respond.ErrorWithCode(w, http.StatusBadRequest, respond.CODE_INVALID_JSON)
		return
	}
	book, err := h.lib.UpdateProgress(chi.URLParam(r, "id"), req.Progress)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond.JSON(w, book)
}

func (h *Handlers) CompleteBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.lib.UpdateProgress(chi.URLParam(r, "id"), 100)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond.JSON(w, book)
}

type StartListeningRequest struct {
	Duration float64 `json:"duration"`
}

func (h *Handlers) StartListening(w http.ResponseWriter, r *http.Request) {
	var req StartListeningRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		respond.ErrorWithCode(w, http.StatusBadRequest, respond.CODE_INVALID_JSON)
		return
	}
	id := chi.URLParam(r, "id")
	book, err := h.lib.Get(id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if !book.Kind.IsAudio() {
		respond.RespondErrorWithText(w, http.StatusBadRequest, respond.CODE_INVALID_INPUT, "book is not an audio book")
		return
	}
	if req.Duration > 0 {
		book, err = h.lib.SetDuration(id, req.Duration)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
	}
	h.reading.Stop()
	h.listening.Start(book.ID, book.Progress, book.DurationSeconds)
	respond.JSON(w, book)
}

type ListeningUpdateRequest struct {
	Position float64 `json:"position"`
	Duration float64 `json:"duration"`
}

type ListeningUpdateResponse struct {
	Progress float64 `json:"progress"`
}

func (h *Handlers) UpdateListening(w http.ResponseWriter, r *http.Request) {
	var req ListeningUpdateRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		respond.ErrorWithCode(w, http.StatusBadRequest, respond.CODE_INVALID_JSON)
		return
	}
	if current, ok := h.listening.Current(); !ok || current != chi.URLParam(r, "id") {
		h.respondError(w, r, activity.ErrNotPlaying)
		return
	}
	progress, err := h.listening.Update(req.Position, req.Duration)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond.JSON(w, ListeningUpdateResponse{Progress: progress})
}

type StartReadingRequest struct {
	BookID string `json:"bookId"`
}

func (h *Handlers) StartReading(w http.ResponseWriter, r *http.Request) {
	var req StartReadingRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		respond.ErrorWithCode(w, http.StatusBadRequest, respond.CODE_INVALID_JSON)
		return
	}
	book, err := h.lib.Get(req.BookID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.listening.Stop()
	h.reading.Start(book.ID)
	respond.NoContent(w)
}

func (h *Handlers) TouchReading(w http.ResponseWriter, r *http.Request) {
	h.reading.Touch()
	respond.NoContent(w)
}

func (h *Handlers) StopReading(w http.ResponseWriter, r *http.Request) {
	h.reading.Stop()
	respond.NoContent(w)
}

type ListNotesResponse struct {
	Notes []notes.Note `json:"notes"`
}

func (h *Handlers) ListNotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.notes.ForBook(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond.JSON(w, ListNotesResponse{Notes: list})
}

type NoteRequest struct {
	Text string `json:"text"`
}

func (h *Handlers) AddNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		respond.ErrorWithCode(w, http.StatusBadRequest, respond.CODE_INVALID_JSON)
		return
	}
	book, err := h.lib.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	note, err := h.notes.Add(book.ID, req.Text)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond.Created(w, note)
}

func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if err := request.DecodeJSON(r.Body, &req); err != nil {
		respond.ErrorWithCode(w, http.StatusBadRequest, respond.CODE_INVALID_JSON)
		return
	}
	note, err := h.notes.Update(chi.URLParam(r, "id"), req.Text)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond.JSON(w, note)
}

func (h *Handlers) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *Handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr), errors.Is(err, library.ErrTooBig):
		respond.RespondErrorWithText(w, http.StatusRequestEntityTooLarge, respond.CODE_FILE_TOO_BIG, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		respond.ErrorWithCode(w, http.StatusNotFound, respond.CODE_NOT_FOUND)
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.RespondErrorWithText(w, http.StatusConflict, respond.CODE_ALREADY_EXISTS, err.Error())
	case errors.Is(err, library.ErrUnsupportedType):
		respond.RespondErrorWithText(w, http.StatusUnsupportedMediaType, respond.CODE_UNSUPPORTED_TYPE, err.Error())
	case errors.Is(err, activity.ErrNotPlaying):
		respond.ErrorWithCode(w, http.StatusConflict, respond.CODE_NOT_PLAYING)
	case isValidationErr(err):
		respond.RespondErrorWithText(w, http.StatusBadRequest, respond.CODE_INVALID_INPUT, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respond.ErrorWithCode(w, http.StatusInternalServerError, respond.CODE_INTERNAL_ERROR)
	}
}

var validationErrs = []error{
	library.ErrEmptyFile,
	library.ErrEmptyTitle,
	library.ErrTitleTooLong,
	library.ErrInvalidProgress,
	library.ErrInvalidDuration,
	notes.ErrEmptyText,
	notes.ErrEmptyBookID,
}

func isValidationErr(err error) bool {
	for _, target := range validationErrs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
