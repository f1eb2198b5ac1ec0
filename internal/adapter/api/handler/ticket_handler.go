package handler

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"civicalert/internal/adapter/api/middleware"
	"civicalert/internal/domain/entity"
	"civicalert/internal/usecase"
	"civicalert/pkg/errors"
	"civicalert/pkg/response"
)

type TicketHandler struct {
	ticketUseCase *usecase.TicketUseCase
}

func NewTicketHandler(ticketUseCase *usecase.TicketUseCase) *TicketHandler {
	return &TicketHandler{
		ticketUseCase: ticketUseCase,
	}
}

type createTicketRequest struct {
	Title       string   `json:"title" validate:"max=120"`
	Category    string   `json:"category"`
	Description string   `json:"description" validate:"max=2000"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,longitude"`
}

func (h *TicketHandler) ListTickets(c echo.Context) error {
	tab, ok := usecase.ParseTab(c.QueryParam("tab"))
	if !ok {
		return response.Error(c, errors.Validation("tab must be one of: all mine nearby"))
	}

	input := usecase.ListTicketsInput{Tab: tab}
	if raw := c.QueryParam("category"); raw != "" {
		category := entity.TicketCategory(raw)
		if !category.Valid() {
			return response.Error(c, errors.Validation("Unknown category "+strconv.Quote(raw)))
		}
		input.Category = &category
	}

	tickets, err := h.ticketUseCase.ListTickets(c.Request().Context(), middleware.UserID(c), input)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, tickets)
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	ticket, err := h.ticketUseCase.GetTicket(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, ticket)
}

// CreateTicket accepts JSON, or multipart with an optional "photo" part.
func (h *TicketHandler) CreateTicket(c echo.Context) error {
	var (
		req   createTicketRequest
		photo *usecase.Photo
	)

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := bindTicketForm(c, &req); err != nil {
			return response.Error(c, err)
		}
		p, err := readPhoto(c, "photo")
		if err != nil {
			return response.Error(c, err)
		}
		photo = p
	} else if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.CreateTicketInput{
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Photo:       photo,
	}
	if req.Latitude != nil && req.Longitude != nil {
		input.Location = &entity.Coordinate{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	ticket, err := h.ticketUseCase.CreateTicket(c.Request().Context(), middleware.UserID(c), input)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, ticket)
}

func bindTicketForm(c echo.Context, req *createTicketRequest) error {
	req.Title = c.FormValue("title")
	req.Category = c.FormValue("category")
	req.Description = c.FormValue("description")

	for field, dst := range map[string]**float64{"latitude": &req.Latitude, "longitude": &req.Longitude} {
		raw := c.FormValue(field)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errors.Validation(field + " must be a number")
		}
		*dst = &v
	}
	return nil
}
