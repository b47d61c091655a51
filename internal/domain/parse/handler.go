package parse

import (
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/notecore/notecore/internal/platform/vocab"
	"github.com/notecore/notecore/pkg/pagination"
)

type Handler struct {
	svc   *Service
	store *vocab.Store
}

// NewHandler builds the HTTP handler. store may be nil when the service
// runs without a database; the vocab endpoints then return 503.
func NewHandler(svc *Service, store *vocab.Store) *Handler {
	return &Handler{svc: svc, store: store}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/notes/parse", h.ParseNote)
	api.POST("/vocab/learn", h.LearnVocab)
	api.GET("/vocab/aliases", h.ListAliases)
}

// parseRequest is the JSON request body for the parse endpoint.
type parseRequest struct {
	Text string `json:"text"`
}

// ParseNote accepts note text as JSON ({"text": ...}) or as a raw
// text/plain body and returns the structured parse.
func (h *Handler) ParseNote(c echo.Context) error {
	text, err := noteText(c)
	if err != nil {
		return err
	}

	result := h.svc.Parse(c.Request().Context(), text)
	return c.JSON(http.StatusOK, result)
}

// LearnVocab scans submitted note text for unknown header spellings and
// persists any that fuzzy-match the known vocabulary.
func (h *Handler) LearnVocab(c echo.Context) error {
	text, err := noteText(c)
	if err != nil {
		return err
	}

	learned, err := h.svc.Learn(c.Request().Context(), text)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to persist aliases")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"learned": learned,
		"count":   len(learned),
	})
}

// ListAliases returns a page of the stored header vocabulary.
func (h *Handler) ListAliases(c echo.Context) error {
	if h.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "vocabulary store not configured")
	}

	aliases, err := h.store.LoadAliases(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load aliases")
	}
	if aliases == nil {
		aliases = []vocab.Alias{}
	}

	p := pagination.FromContext(c)
	page, total := pagination.Page(aliases, p)
	return c.JSON(http.StatusOK, pagination.NewResponse(page, total, p.Limit, p.Offset))
}

// noteText extracts the note body from either a JSON or plain-text
// request. An empty body is a 400; an empty note inside valid JSON is
// legal and parses to a zero-confidence result.
func noteText(c echo.Context) (string, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		var req parseRequest
		if err := c.Bind(&req); err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
		}
		return req.Text, nil
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	if len(body) == 0 {
		return "", echo.NewHTTPError(http.StatusBadRequest, "empty request body")
	}
	return string(body), nil
}
