package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clickquest/clicker-system/internal/api/metrics"
	"github.com/clickquest/clicker-system/internal/core/domain"
	"github.com/clickquest/clicker-system/internal/core/ports"
)

// SessionHandler exposes the session/account binding protocol over HTTP.
// Error translation to status codes happens in the central error handler.
type SessionHandler struct {
	service ports.TransferService
}

func NewSessionHandler(service ports.TransferService) *SessionHandler {
	return &SessionHandler{service: service}
}

// CreateUser handles POST /user — provisions a guest account bound to the
// calling session.
//
// @Summary      Create a guest account
// @Tags         session
// @Produce      json
// @Success      200  {object}  newUserResponse
// @Failure      500  {object}  errorResponse
// @Router       /user [post]
func (h *SessionHandler) CreateUser(c echo.Context) error {
	handle, err := sessionHandle(c)
	if err != nil {
		return err
	}

	creds, err := h.service.CreateSession(c.Request().Context(), handle)
	if err != nil {
		return err
	}

	metrics.SessionsCreatedTotal.Inc()
	return c.JSON(http.StatusOK, newUserResponse{
		UID:        creds.AccountID,
		LoginToken: creds.LoginToken,
	})
}

// ResumeSession handles PUT /session — binds the calling session to an
// existing account after verifying its login token.
//
// @Summary      Authenticate with a login token
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      resumeSessionRequest  true  "Account credentials"
// @Success      200   {object}  statusResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /session [put]
func (h *SessionHandler) ResumeSession(c echo.Context) error {
	handle, err := sessionHandle(c)
	if err != nil {
		return err
	}

	var req resumeSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.ResumeSession(c.Request().Context(), handle, req.UID, req.LoginToken); err != nil {
		return err
	}

	metrics.SessionsResumedTotal.Inc()
	return c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}

// CheckSession handles GET /session — returns the bound account and live
// click count, or 401 when the session is unbound.
//
// @Summary      Check session state
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /session [get]
func (h *SessionHandler) CheckSession(c echo.Context) error {
	handle, err := sessionHandle(c)
	if err != nil {
		return err
	}

	binding, err := h.service.CheckSession(c.Request().Context(), handle)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{
		UID:    binding.AccountID,
		Clicks: binding.LiveClicks,
	})
}

// BeginTransfer handles GET /transfer_id — issues a one-time transfer code
// for the bound account.
//
// @Summary      Issue a transfer code
// @Tags         transfer
// @Produce      json
// @Success      200  {object}  transferIDResponse
// @Failure      401  {object}  errorResponse
// @Router       /transfer_id [get]
func (h *SessionHandler) BeginTransfer(c echo.Context) error {
	handle, err := sessionHandle(c)
	if err != nil {
		return err
	}

	code, err := h.service.BeginTransfer(c.Request().Context(), handle)
	if err != nil {
		return err
	}

	metrics.TransfersIssuedTotal.Inc()
	return c.JSON(http.StatusOK, transferIDResponse{TransferID: code})
}

// RedeemTransfer handles PUT /user — merges the calling session into the
// target account, consuming the transfer code.
//
// @Summary      Redeem a transfer code
// @Tags         transfer
// @Accept       json
// @Produce      json
// @Param        body  body      redeemTransferRequest  true  "Target account and code"
// @Success      200   {object}  redeemTransferResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /user [put]
func (h *SessionHandler) RedeemTransfer(c echo.Context) error {
	handle, err := sessionHandle(c)
	if err != nil {
		return err
	}

	var req redeemTransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, err := h.service.RedeemTransfer(c.Request().Context(), handle, req.UID, req.TransferID)
	if err != nil {
		metrics.TransfersRedeemedTotal.WithLabelValues(redeemResult(err)).Inc()
		return err
	}

	metrics.TransfersRedeemedTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, redeemTransferResponse{Token: token})
}

// AddClicks handles POST /clicks — records clicks on the live session counter.
//
// @Summary      Record clicks
// @Tags         clicks
// @Accept       json
// @Produce      json
// @Param        body  body      addClicksRequest  true  "Click count"
// @Success      200   {object}  clicksResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /clicks [post]
func (h *SessionHandler) AddClicks(c echo.Context) error {
	handle, err := sessionHandle(c)
	if err != nil {
		return err
	}

	var req addClicksRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	total, err := h.service.AddClicks(c.Request().Context(), handle, req.Count)
	if err != nil {
		return err
	}

	metrics.ClicksRecordedTotal.Add(float64(req.Count))
	return c.JSON(http.StatusOK, clicksResponse{Clicks: total})
}

// LinkExternal handles POST /link — attaches an external identity to the
// bound account.
//
// @Summary      Link an external identity
// @Tags         account
// @Accept       json
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /link [post]
func (h *SessionHandler) LinkExternal(c echo.Context) error {
	handle, err := sessionHandle(c)
	if err != nil {
		return err
	}

	var req linkExternalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.LinkExternal(c.Request().Context(), handle, req.Provider, req.ExternalID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Rename handles PATCH /user — sets the bound account's display name.
//
// @Summary      Rename the account
// @Tags         account
// @Accept       json
// @Success      204
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /user [patch]
func (h *SessionHandler) Rename(c echo.Context) error {
	handle, err := sessionHandle(c)
	if err != nil {
		return err
	}

	var req renameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.SetDisplayName(c.Request().Context(), handle, req.Username); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func redeemResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrSelfTransfer):
		return "self"
	case errors.Is(err, domain.ErrInvalidTransfer), errors.Is(err, domain.ErrInvalidArgument):
		return "invalid"
	default:
		return "error"
	}
}
