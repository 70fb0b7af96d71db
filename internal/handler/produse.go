package handler

import (
	"net/http"

	"sysmanager/internal/apierror"
	"sysmanager/internal/repository"

	"github.com/gin-gonic/gin"
)

// ProduseHandler exposes the read-only catalog used by the till search box.
type ProduseHandler struct {
	repo   repository.ProdusRepository
	lookup ProdusFinder
}

func NewProduseHandler(repo repository.ProdusRepository, lookup ProdusFinder) *ProduseHandler {
	return &ProduseHandler{repo: repo, lookup: lookup}
}

type produseFilter struct {
	Q     string `form:"q"`
	Limit int    `form:"limit,default=50" validate:"min=1,max=200"`
}

func (h *ProduseHandler) Cauta(c *gin.Context) {
	var f produseFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	if err := validate.Struct(&f); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("limit invalid"))
		return
	}
	produse, err := h.repo.Search(c.Request.Context(), f.Q, f.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, produse)
}

func (h *ProduseHandler) DupaID(c *gin.Context) {
	id, err := paramInt(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := h.lookup.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
