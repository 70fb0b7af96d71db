package handler

import (
	"errors"
	"net/http"

	"sysmanager/internal/apierror"
	"sysmanager/internal/bon"
	"sysmanager/internal/dto"
	"sysmanager/internal/service"

	"github.com/gin-gonic/gin"
)

type BonuriAsteptareHandler struct {
	svc     service.BonuriAsteptareService
	sesiuni *service.SessionRegistry
}

func NewBonuriAsteptareHandler(svc service.BonuriAsteptareService, sesiuni *service.SessionRegistry) *BonuriAsteptareHandler {
	return &BonuriAsteptareHandler{svc: svc, sesiuni: sesiuni}
}

// Lista godoc
// @Summary  Bonurile aflate în așteptare, cele mai noi primele
// @Tags     bonuri-asteptare
// @Produce  json
// @Success  200 {array} dto.BonAsteptareListItem
// @Router   /v1/bonuri-asteptare [get]
func (h *BonuriAsteptareHandler) Lista(c *gin.Context) {
	bonuri, err := h.svc.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.BonAsteptareListItem, len(bonuri))
	for i := range bonuri {
		out[i] = dto.BonAsteptareToListItem(&bonuri[i])
	}
	c.JSON(http.StatusOK, out)
}

func (h *BonuriAsteptareHandler) DupaID(c *gin.Context) {
	id, err := paramInt(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	b, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.BonAsteptareToResponse(b))
}

func (h *BonuriAsteptareHandler) Sterge(c *gin.Context) {
	id, err := paramInt(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BonuriAsteptareHandler) Inchide(c *gin.Context) {
	id, err := paramInt(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.svc.MarkClosed(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reluare godoc
// @Summary  Reia un bon din așteptare în bonul terminalului
// @Tags     bonuri-asteptare
// @Produce  json
// @Param    id       path  int    true "ID bon"
// @Param    terminal query string true "Terminal"
// @Success  200 {object} dto.ResumeBonResponse
// @Failure  404 {object} apierror.APIError
// @Router   /v1/bonuri-asteptare/{id}/reluare [post]
func (h *BonuriAsteptareHandler) Reluare(c *gin.Context) {
	id, err := paramInt(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var res *dto.ResumeBonResponse
	err = h.sesiuni.With(c.Query("terminal"), func(m *bon.Manager) error {
		var err error
		res, err = h.svc.Resume(c.Request.Context(), m, id)
		return err
	})
	if errors.Is(err, service.ErrStergereBon) && res != nil {
		// the cart is loaded; report it but flag the stale snapshot
		c.JSON(http.StatusMultiStatus, gin.H{"reluare": res, "eroare": apierror.New(err.Error())})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
