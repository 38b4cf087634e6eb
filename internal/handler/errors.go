package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pousada-reservation/internal/repository"
	"github.com/iliyamo/pousada-reservation/internal/service"
)

const msgInternal = "Erro interno do servidor"

// HTTPErrorHandler renders errors that escaped the handlers. Unknown routes
// get the method and URL back; anything unexpected is logged and reported
// without internal details.
func HTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			switch he.Code {
			case http.StatusNotFound:
				_ = c.JSON(http.StatusNotFound, echo.Map{
					"error":  "Rota não encontrada",
					"method": c.Request().Method,
					"url":    c.Request().URL.String(),
				})
				return
			case http.StatusMethodNotAllowed:
				_ = c.JSON(he.Code, echo.Map{"error": "Método não permitido"})
				return
			}
			if he.Code < http.StatusInternalServerError {
				msg, ok := he.Message.(string)
				if !ok {
					msg = http.StatusText(he.Code)
				}
				_ = c.JSON(he.Code, echo.Map{"error": msg})
				return
			}
		}
		log.Error("unhandled error",
			zap.Error(err),
			zap.String("method", c.Request().Method),
			zap.String("uri", c.Request().RequestURI))
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternal})
	}
}

// fail maps a service error to its response. notFound is the message used
// for a missing resource of the calling endpoint.
func fail(c echo.Context, log *zap.Logger, err error, notFound string) error {
	switch {
	case errors.Is(err, repository.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Quarto não encontrado"})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": notFound})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "Quarto não disponível para as datas selecionadas"})
	case errors.Is(err, service.ErrInvalidDates):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Data de check-out deve ser posterior ao check-in"})
	case errors.Is(err, service.ErrInvalidStatus):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Status inválido"})
	case errors.Is(err, service.ErrTooManyGuests):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Número de hóspedes excede a capacidade do quarto"})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Credenciais inválidas"})
	}
	log.Error("request failed",
		zap.Error(err),
		zap.String("method", c.Request().Method),
		zap.String("uri", c.Request().RequestURI))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": msgInternal})
}
