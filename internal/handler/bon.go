package handler

import (
	"context"
	"fmt"
	"net/http"

	"sysmanager/internal/bon"
	"sysmanager/internal/dto"
	"sysmanager/internal/model"
	"sysmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProdusFinder resolves the product scanned at the till.
type ProdusFinder interface {
	FindByID(ctx context.Context, id int) (*model.Produs, error)
}

// BonHandler serves the receipt being built on a terminal. Every operation
// runs under the terminal's session lock.
type BonHandler struct {
	sesiuni *service.SessionRegistry
	produse ProdusFinder
	svc     service.BonuriAsteptareService
}

func NewBonHandler(sesiuni *service.SessionRegistry, produse ProdusFinder, svc service.BonuriAsteptareService) *BonHandler {
	return &BonHandler{sesiuni: sesiuni, produse: produse, svc: svc}
}

// withCart runs fn on the terminal's receipt and writes the resulting state.
func (h *BonHandler) withCart(c *gin.Context, status int, fn func(m *bon.Manager) error) {
	var resp dto.BonResponse
	err := h.sesiuni.With(c.Param("terminal"), func(m *bon.Manager) error {
		if err := fn(m); err != nil {
			return err
		}
		resp = dto.BonFromManager(m)
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, resp)
}

// line resolves the :index path parameter to a line of m.
func line(c *gin.Context, m *bon.Manager) (*bon.Item, error) {
	idx, err := paramInt(c, "index")
	if err != nil {
		return nil, err
	}
	it := m.At(idx)
	if it == nil {
		return nil, fmt.Errorf("%w: %d", errLinieInexistenta, idx)
	}
	return it, nil
}

func orOne(d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.NewFromInt(1)
	}
	return d
}

// Get godoc
// @Summary  Starea bonului curent
// @Tags     bon
// @Produce  json
// @Param    terminal path string true "Terminal"
// @Success  200 {object} dto.BonResponse
// @Router   /v1/terminale/{terminal}/bon [get]
func (h *BonHandler) Get(c *gin.Context) {
	h.withCart(c, http.StatusOK, func(*bon.Manager) error { return nil })
}

// AdaugaProdus godoc
// @Summary  Adaugă un produs în bon (cu garanția SGR, dacă este cazul)
// @Tags     bon
// @Accept   json
// @Produce  json
// @Param    terminal path string                  true "Terminal"
// @Param    body     body dto.AdaugaProdusRequest true "Produs"
// @Success  200 {object} dto.BonResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/terminale/{terminal}/bon/produse [post]
func (h *BonHandler) AdaugaProdus(c *gin.Context) {
	var req dto.AdaugaProdusRequest
	if !bindAndValidate(c, &req) {
		return
	}
	// catalog lookup happens outside the session lock
	p, err := h.produse.FindByID(c.Request.Context(), req.IDProdus)
	if err != nil {
		respondError(c, err)
		return
	}
	h.withCart(c, http.StatusOK, func(m *bon.Manager) error {
		_, err := m.AddProduct(p, orOne(req.Cantitate))
		return err
	})
}

func (h *BonHandler) Incrementeaza(c *gin.Context) {
	var req dto.DeltaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.withCart(c, http.StatusOK, func(m *bon.Manager) error {
		it, err := line(c, m)
		if err != nil {
			return err
		}
		if !m.IncrementQuantity(it, orOne(req.Delta)) {
			return errLinieBlocata
		}
		return nil
	})
}

func (h *BonHandler) Decrementeaza(c *gin.Context) {
	var req dto.DeltaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.withCart(c, http.StatusOK, func(m *bon.Manager) error {
		it, err := line(c, m)
		if err != nil {
			return err
		}
		if !m.DecrementQuantity(it, orOne(req.Delta)) {
			return errLinieBlocata
		}
		return nil
	})
}

func (h *BonHandler) SeteazaCantitate(c *gin.Context) {
	var req dto.SetCantitateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	h.withCart(c, http.StatusOK, func(m *bon.Manager) error {
		it, err := line(c, m)
		if err != nil {
			return err
		}
		if !m.SetQuantity(it, req.Cantitate) {
			return errLinieBlocata
		}
		return nil
	})
}

// StergeLinie removes exactly one line; a guarantee line can be removed on its own.
func (h *BonHandler) StergeLinie(c *gin.Context) {
	h.withCart(c, http.StatusOK, func(m *bon.Manager) error {
		it, err := line(c, m)
		if err != nil {
			return err
		}
		m.RemoveItem(it)
		return nil
	})
}

func (h *BonHandler) Goleste(c *gin.Context) {
	h.withCart(c, http.StatusOK, func(m *bon.Manager) error {
		m.ClearCart()
		return nil
	})
}

// PuneInAsteptare godoc
// @Summary  Pune bonul curent în așteptare
// @Tags     bon
// @Accept   json
// @Produce  json
// @Param    terminal path string              true  "Terminal"
// @Param    body     body dto.HoldBonRequest false "Client / observații"
// @Success  201 {object} dto.BonAsteptareResponse
// @Failure  409 {object} apierror.APIError
// @Router   /v1/terminale/{terminal}/bon/asteptare [post]
func (h *BonHandler) PuneInAsteptare(c *gin.Context) {
	var req dto.HoldBonRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var held *model.BonAsteptare
	err := h.sesiuni.With(c.Param("terminal"), func(m *bon.Manager) error {
		var err error
		held, err = h.svc.Hold(c.Request.Context(), m, req)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.BonAsteptareToResponse(held))
}
