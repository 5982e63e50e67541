package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/countries"
	"github.com/i474232898/weather-lookup/internal/store"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// SessionCookie carries the id of the caller's UI session.
const SessionCookie = "weather_session"

const defaultHeartbeat = 15 * time.Second

// Sessions hands out the Orchestrator that owns a UI session's query state.
type Sessions interface {
	GetOrCreate(id string) (string, *weather.Orchestrator, bool)
}

var _ Sessions = (*store.SessionStore)(nil)

type handler struct {
	sessions  Sessions
	logger    *zap.Logger
	heartbeat time.Duration
}

// RegisterRoutes wires the HTML form, the JSON API and the state stream into the Fiber app.
func RegisterRoutes(app *fiber.App, sessions Sessions, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &handler{sessions: sessions, logger: logger, heartbeat: defaultHeartbeat}

	app.Get("/", h.showPage)
	app.Post("/", h.submitForm)

	v1 := app.Group("/api/v1")

	v1.Get("/countries", func(c *fiber.Ctx) error {
		return c.JSON(countries.All())
	})

	v1.Get("/weather/current", h.currentWeather)

	v1.Get("/weather/state", func(c *fiber.Ctx) error {
		return c.JSON(newStateView(h.session(c).State()))
	})

	v1.Get("/weather/events", h.streamState)
}

// ErrorHandler renders errors as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// session returns the caller's Orchestrator, starting a session and setting the
// cookie when the request carries none or an expired one.
func (h *handler) session(c *fiber.Ctx) *weather.Orchestrator {
	id, o, created := h.sessions.GetOrCreate(c.Cookies(SessionCookie))
	if created {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    id,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return o
}

func (h *handler) currentWeather(c *fiber.Ctx) error {
	in := parseSearchQuery(c)
	if err := in.Validate(); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	o := h.session(c)
	state, err := o.FetchWeather(c.UserContext(), in)
	if errors.Is(err, weather.ErrInputIncomplete) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return c.Status(statusCode(state)).JSON(newStateView(state))
}

func parseSearchQuery(c *fiber.Ctx) weather.SearchInput {
	return weather.SearchInput{
		City:    c.Query("city"),
		Country: c.Query("country"),
	}.Normalize()
}

// statusCode maps a terminal query state to an HTTP status.
func statusCode(state weather.QueryState) int {
	switch state.Status() {
	case weather.StatusNotFound:
		return fiber.StatusNotFound
	case weather.StatusFailed:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusOK
	}
}

// stateView is the JSON rendering of a QueryState.
type stateView struct {
	Status   weather.Status         `json:"status"`
	Loading  bool                   `json:"loading"`
	NotFound bool                   `json:"notFound"`
	HasData  bool                   `json:"hasData"`
	Result   *weather.WeatherResult `json:"result,omitempty"`
	Failure  *weather.Failure       `json:"failure,omitempty"`
}

func newStateView(state weather.QueryState) stateView {
	v := stateView{
		Status:   state.Status(),
		Loading:  state.Loading,
		NotFound: state.NotFound,
		HasData:  state.HasData(),
		Failure:  state.Failure,
	}
	if !state.Result.IsEmpty() {
		result := state.Result
		v.Result = &result
	}
	return v
}
