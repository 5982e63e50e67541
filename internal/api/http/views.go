package httpapi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-lookup/internal/countries"
	"github.com/i474232898/weather-lookup/internal/weather"
)

// alertIncomplete is shown when the form is submitted with an empty field.
const alertIncomplete = "All fields are required"

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"celsius": kelvinToCelsius,
}).ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Countries []countries.Country
	Input     weather.SearchInput
	Alert     string
	State     weather.QueryState
	Place     string
}

// kelvinToCelsius formats an API temperature (Kelvin) for display.
func kelvinToCelsius(k float64) string {
	return fmt.Sprintf("%.0f", k-273.15)
}

func (h *handler) showPage(c *fiber.Ctx) error {
	return h.render(c, fiber.StatusOK, pageData{State: h.session(c).State()})
}

func (h *handler) submitForm(c *fiber.Ctx) error {
	in := weather.SearchInput{
		City:    c.FormValue("city"),
		Country: c.FormValue("country"),
	}.Normalize()
	o := h.session(c)

	if err := in.Validate(); err != nil {
		return h.render(c, fiber.StatusBadRequest, pageData{
			Input: in,
			Alert: alertIncomplete,
			State: o.State(),
		})
	}

	// Failures are part of the returned state and rendered from it.
	state, _ := o.FetchWeather(c.UserContext(), in)
	return h.render(c, fiber.StatusOK, pageData{Input: in, State: state})
}

func (h *handler) render(c *fiber.Ctx, status int, data pageData) error {
	data.Countries = countries.All()
	if data.State.HasData() {
		data.Place = data.State.Result.Name
		if country, ok := countries.Lookup(data.Input.Country); ok {
			data.Place += ", " + country.Name
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("render page", zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render page")
	}

	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}
