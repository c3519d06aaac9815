package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/imagegenhub/server/internal/api/middleware"
	"github.com/imagegenhub/server/internal/service"
)

// MemeHandler handles meme CRUD, listing, trending, flagging, and the
// creator dashboard.
type MemeHandler struct {
	memes *service.MemeService
}

// NewMemeHandler creates a new meme handler.
func NewMemeHandler(memes *service.MemeService) *MemeHandler {
	return &MemeHandler{memes: memes}
}

// Create handles POST /api/memes.
func (h *MemeHandler) Create(c *gin.Context) {
	var in service.CreateMemeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid meme payload"})
		return
	}

	meme, err := h.memes.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Meme created successfully", "meme": meme})
}

// List handles GET /api/memes.
func (h *MemeHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.memes.List(c.Request.Context(), service.ListQuery{
		Sort:          service.SortMode(c.DefaultQuery("sort", "new")),
		Page:          page,
		Limit:         limit,
		TemplatesOnly: c.Query("templates") == "true",
	}, middleware.UserIDPtr(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/memes/:id. Fetching a meme records a view as a
// side effect.
func (h *MemeHandler) Get(c *gin.Context) {
	result, err := h.memes.Detail(c.Request.Context(), c.Param("id"), middleware.UserIDPtr(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Update handles PUT /api/memes/:id.
func (h *MemeHandler) Update(c *gin.Context) {
	var in service.UpdateMemeInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid meme payload"})
		return
	}

	meme, err := h.memes.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meme updated successfully", "meme": meme})
}

// Delete handles DELETE /api/memes/:id.
func (h *MemeHandler) Delete(c *gin.Context) {
	if err := h.memes.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meme deleted successfully"})
}

// Flag handles POST /api/memes/:id/flag.
func (h *MemeHandler) Flag(c *gin.Context) {
	if err := h.memes.Flag(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Meme flagged successfully"})
}

// TrendingDay handles GET /api/memes/trending/day.
func (h *MemeHandler) TrendingDay(c *gin.Context) {
	h.trending(c, service.TrendingDay)
}

// TrendingWeek handles GET /api/memes/trending/week.
func (h *MemeHandler) TrendingWeek(c *gin.Context) {
	h.trending(c, service.TrendingWeek)
}

func (h *MemeHandler) trending(c *gin.Context, window service.TrendingWindow) {
	meme, err := h.memes.Trending(c.Request.Context(), window)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meme": meme})
}

// Dashboard handles GET /api/memes/user/dashboard.
func (h *MemeHandler) Dashboard(c *gin.Context) {
	memes, err := h.memes.Dashboard(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"memes": memes})
}
