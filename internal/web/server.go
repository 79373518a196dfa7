// Package web serves the fuel price prediction form and its JSON API.
//
// Routes:
//
//	GET  /               prediction form
//	POST /predict        form submission, re-renders the form with the result
//	POST /api/predict    JSON prediction, 422 on rejected input
//	GET  /api/districts  sorted district list
//	GET  /api/model      fitted parameters and training metrics
//	GET  /chart.png      observed prices and prediction line
//	GET  /healthz        liveness
package web

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ezoic/fuelcast/dataset"
	"github.com/ezoic/fuelcast/forecast"
	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
	"github.com/ezoic/fuelcast/pkg/log"
)

// ModelSource yields the prepared model. *forecast.Loader implements it.
type ModelSource interface {
	Model(ctx context.Context) (*forecast.Model, error)
}

// Server holds the handlers' shared state.
type Server struct {
	models ModelSource
	logger log.Logger
}

// New builds the fiber application serving models.
func New(models ModelSource) *fiber.App {
	s := &Server{
		models: models,
		logger: log.GetLoggerWithName("web").With(log.ComponentKey, "web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "fuelcast",
		StrictRouting:         true,
		CaseSensitive:         true,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	app.Use(s.requestLogger)

	app.Get("/", s.index)
	app.Post("/predict", s.submit)
	app.Get("/chart.png", s.chart)
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")
	api.Post("/predict", s.apiPredict)
	api.Get("/districts", s.apiDistricts)
	api.Get("/model", s.apiModel)

	return app
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if fcErrors.As(err, &fe) {
		status = fe.Code
	} else if err != nil {
		status = fiber.StatusInternalServerError
	}

	fields := []interface{}{
		log.RequestIDKey, c.GetRespHeader(fiber.HeaderXRequestID),
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	}
	switch {
	case err != nil && status >= fiber.StatusInternalServerError:
		s.logger.Error("Request failed", append([]interface{}{err}, fields...)...)
	case status >= fiber.StatusInternalServerError:
		s.logger.Error("Request failed", fields...)
	default:
		s.logger.Info("Request served", fields...)
	}
	return err
}

// prediction is the outcome of one validated prediction request.
type prediction struct {
	Date     time.Time
	District string
	Fuel     string
	Price    float64
}

// predict validates the raw form values and runs the model. The UI date
// bounds are checked here; the model itself accepts any date.
func (s *Server) predict(ctx context.Context, rawDate, district, fuel string) (*prediction, error) {
	m, err := s.models.Model(ctx)
	if err != nil {
		return nil, err
	}
	date, err := ParseFormDate(rawDate)
	if err != nil {
		return nil, err
	}
	price, err := m.Predict(date, district, fuel)
	if err != nil {
		return nil, err
	}
	return &prediction{Date: *date, District: district, Fuel: fuel, Price: price}, nil
}

// userError extracts the message and field of a rejected input.
func userError(err error) (message, field string, ok bool) {
	var ve *fcErrors.ValidationError
	if fcErrors.As(err, &ve) {
		return ve.Message(), ve.ParamName, true
	}
	return "", "", false
}

func (s *Server) index(c *fiber.Ctx) error {
	m, err := s.models.Model(c.UserContext())
	if err != nil {
		return err
	}
	return s.renderForm(c, fiber.StatusOK, newFormView(m.SortedDistricts))
}

func (s *Server) submit(c *fiber.Ctx) error {
	m, err := s.models.Model(c.UserContext())
	if err != nil {
		return err
	}

	view := newFormView(m.SortedDistricts)
	view.Fuel = c.FormValue("fuel_type")
	view.Date = c.FormValue("date")
	view.District = c.FormValue("district")

	p, err := s.predict(c.UserContext(), view.Date, view.District, view.Fuel)
	if err != nil {
		msg, _, ok := userError(err)
		if !ok {
			return err
		}
		view.Error = msg
		return s.renderForm(c, fiber.StatusOK, view)
	}

	view.Result = ResultText(p.Fuel, p.Date, p.District, p.Price)
	view.ChartURL = chartURL(p.Date, p.District, p.Fuel)
	return s.renderForm(c, fiber.StatusOK, view)
}

func (s *Server) renderForm(c *fiber.Ctx, status int, view formView) error {
	body, err := renderForm(view)
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(body)
}

// PredictRequest is the body of POST /api/predict.
type PredictRequest struct {
	Date     string `json:"date" form:"date"`
	District string `json:"district" form:"district"`
	FuelType string `json:"fuel_type" form:"fuel_type"`
}

// PredictResponse is a successful POST /api/predict reply.
type PredictResponse struct {
	Date      string          `json:"date"`
	District  string          `json:"district"`
	FuelType  string          `json:"fuel_type"`
	Price     float64         `json:"price"`
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

func (s *Server) apiPredict(c *fiber.Ctx) error {
	var req PredictRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	p, err := s.predict(c.UserContext(), req.Date, req.District, req.FuelType)
	if err != nil {
		msg, field, ok := userError(err)
		if !ok {
			return err
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": msg,
			"field": field,
		})
	}

	return c.JSON(PredictResponse{
		Date:      p.Date.Format(time.DateOnly),
		District:  p.District,
		FuelType:  p.Fuel,
		Price:     p.Price,
		Amount:    PriceAmount(p.Price),
		Formatted: FormatPrice(p.Price),
	})
}

func (s *Server) apiDistricts(c *fiber.Ctx) error {
	m, err := s.models.Model(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"districts": m.SortedDistricts})
}

func (s *Server) apiModel(c *fiber.Ctx) error {
	m, err := s.models.Model(c.UserContext())
	if err != nil {
		return err
	}
	first, last := m.History.DateRange()
	return c.JSON(fiber.Map{
		"source":       m.History.Source,
		"n_records":    len(m.History.Records),
		"n_unmodelled": m.History.Unmodelled(),
		"first_date":   first.Format(time.DateOnly),
		"last_date":    last.Format(time.DateOnly),
		"model":        m.Pipeline.Params(),
	})
}

func (s *Server) chart(c *fiber.Ctx) error {
	district := c.Query("district")
	fuel := c.Query("fuel_type")

	p, err := s.predict(c.UserContext(), c.Query("date"), district, fuel)
	if err != nil {
		msg, field, ok := userError(err)
		if !ok {
			return err
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": msg,
			"field": field,
		})
	}

	m, err := s.models.Model(c.UserContext())
	if err != nil {
		return err
	}
	ft, _ := dataset.ParseFuelType(p.Fuel)
	img, err := renderChart(m, p.Date, p.District, ft)
	if err != nil {
		return fcErrors.Wrap(err, "render chart")
	}
	c.Type("png")
	return c.Send(img)
}
