package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"menuplanner/internal/models"
	"menuplanner/internal/planner"
)

// Options configures a PlannerAPI
type Options struct {
	Logger zerolog.Logger
	// Hub serves the change feed on /ws when set
	Hub *Hub
	// Metrics is mounted on MetricsPath when set
	Metrics     http.Handler
	MetricsPath string
}

// PlannerAPI exposes a planner session over HTTP
type PlannerAPI struct {
	Router  *gin.Engine
	Session *planner.Session
	hub     *Hub
	log     zerolog.Logger
}

// NewPlannerAPI creates the router with every route registered
func NewPlannerAPI(session *planner.Session, opts Options) *PlannerAPI {
	router := gin.New()
	router.Use(RequestID(), Logger(opts.Logger), Recovery(opts.Logger))

	api := &PlannerAPI{
		Router:  router,
		Session: session,
		hub:     opts.Hub,
		log:     opts.Logger,
	}

	api.setupRoutes(opts)
	return api
}

// setupRoutes configures all API endpoints
func (p *PlannerAPI) setupRoutes(opts Options) {
	p.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if p.hub != nil {
		p.Router.GET("/ws", p.hub.ServeWS)
	}
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		p.Router.GET(path, gin.WrapH(opts.Metrics))
	}

	v1 := p.Router.Group("/api/v1")
	{
		// Dish catalog
		v1.GET("/dishes", p.ListDishes)
		v1.POST("/dishes", p.CreateDish)
		v1.GET("/dishes/:name", p.GetDish)
		v1.PUT("/dishes/:name", p.UpdateDish)
		v1.DELETE("/dishes/:name", p.DeleteDish)
		v1.GET("/dishes/:name/availability", p.GetAvailability)

		// Weekly menu
		v1.GET("/menu", p.GetMenu)
		v1.GET("/menu/:day/:meal", p.GetMeal)
		v1.PUT("/menu/:day/:meal", p.AssignMeal)
		v1.DELETE("/menu/:day/:meal", p.ClearMeal)

		// Products
		v1.GET("/products", p.ListProducts)
		v1.POST("/products", p.AddProduct)
		v1.GET("/products/:name", p.GetProduct)
		v1.PUT("/products/:name", p.UpdateProduct)
		v1.DELETE("/products/:name", p.DeleteProduct)

		// Export
		v1.POST("/export/products", p.ExportProducts)
		v1.POST("/export/menu", p.ExportMenu)
	}
}

// Dish catalog handlers

func (p *PlannerAPI) ListDishes(c *gin.Context) {
	if product := c.Query("ingredient"); product != "" {
		c.JSON(http.StatusOK, p.Session.DishesWithIngredient(product))
		return
	}
	c.JSON(http.StatusOK, p.Session.Dishes())
}

func (p *PlannerAPI) CreateDish(c *gin.Context) {
	var req dishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dish, err := req.dish()
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := p.Session.AddDish(c.Request.Context(), dish); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dish)
}

func (p *PlannerAPI) GetDish(c *gin.Context) {
	dish, ok := p.Session.FindDish(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "dish not found"})
		return
	}
	c.JSON(http.StatusOK, dish)
}

func (p *PlannerAPI) UpdateDish(c *gin.Context) {
	var req dishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dish, err := req.dish()
	if err != nil {
		abortWithError(c, err)
		return
	}
	n, err := p.Session.UpdateDish(c.Request.Context(), c.Param("name"), dish)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dish": dish, "slots_updated": n})
}

func (p *PlannerAPI) DeleteDish(c *gin.Context) {
	if !p.Session.RemoveDish(c.Request.Context(), c.Param("name")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "dish not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (p *PlannerAPI) GetAvailability(c *gin.Context) {
	dish, ok := p.Session.FindDish(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "dish not found"})
		return
	}
	shortages := p.Session.Shortages(dish)
	c.JSON(http.StatusOK, availabilityResponse{
		Dish:      dish.Name(),
		Available: len(shortages) == 0,
		Shortages: shortages,
	})
}

// Weekly menu handlers

func (p *PlannerAPI) GetMenu(c *gin.Context) {
	c.JSON(http.StatusOK, slotList(p.Session.Menu()))
}

func (p *PlannerAPI) GetMeal(c *gin.Context) {
	day, meal, ok := slotParams(c)
	if !ok {
		return
	}
	dish, planned, err := p.Session.Meal(day, meal)
	if err != nil {
		abortWithError(c, err)
		return
	}
	slot := slotResponse{Day: day, Meal: meal}
	if planned {
		slot.Dish = &dish
	}
	c.JSON(http.StatusOK, slot)
}

func (p *PlannerAPI) AssignMeal(c *gin.Context) {
	day, meal, ok := slotParams(c)
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assigned, shortages, err := p.Session.AssignMealByName(c.Request.Context(), day, meal, req.Dish)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if !assigned {
		c.JSON(http.StatusConflict, gin.H{"error": "not enough products for dish", "shortages": shortages})
		return
	}

	dish, _, _ := p.Session.Meal(day, meal)
	c.JSON(http.StatusOK, slotResponse{Day: day, Meal: meal, Dish: &dish})
}

func (p *PlannerAPI) ClearMeal(c *gin.Context) {
	day, meal, ok := slotParams(c)
	if !ok {
		return
	}
	cleared, err := p.Session.ClearMeal(c.Request.Context(), day, meal)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "meal": meal, "cleared": cleared})
}

// Product handlers

func (p *PlannerAPI) ListProducts(c *gin.Context) {
	c.JSON(http.StatusOK, productList(p.Session.Products()))
}

func (p *PlannerAPI) AddProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := req.quantity()
	if err != nil {
		abortWithError(c, err)
		return
	}
	name := strings.TrimSpace(req.Name)
	if err := p.Session.AddProduct(c.Request.Context(), name, q); err != nil {
		abortWithError(c, err)
		return
	}
	if q.IsZero() {
		c.Status(http.StatusNoContent)
		return
	}
	p.writeProduct(c, name)
}

func (p *PlannerAPI) GetProduct(c *gin.Context) {
	p.writeProduct(c, c.Param("name"))
}

func (p *PlannerAPI) UpdateProduct(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := req.quantity()
	if err != nil {
		abortWithError(c, err)
		return
	}
	name := c.Param("name")
	if err := p.Session.UpdateProduct(c.Request.Context(), name, q); err != nil {
		abortWithError(c, err)
		return
	}
	if q.IsZero() {
		c.Status(http.StatusNoContent)
		return
	}
	p.writeProduct(c, name)
}

func (p *PlannerAPI) DeleteProduct(c *gin.Context) {
	if !p.Session.RemoveProduct(c.Request.Context(), c.Param("name")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Export handlers

func (p *PlannerAPI) ExportProducts(c *gin.Context) {
	p.export(c, p.Session.ExportProducts)
}

func (p *PlannerAPI) ExportMenu(c *gin.Context) {
	p.export(c, p.Session.ExportMenu)
}

// Private helper methods

func (p *PlannerAPI) export(c *gin.Context, write func(path string) error) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := write(req.Path); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": req.Path})
}

func (p *PlannerAPI) writeProduct(c *gin.Context, name string) {
	q, ok := p.Session.Product(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, productResponse{Name: name, Quantity: q})
}

func slotParams(c *gin.Context) (models.Day, models.Meal, bool) {
	day, err := models.ParseDay(c.Param("day"))
	if err != nil {
		abortWithError(c, err)
		return "", "", false
	}
	meal, err := models.ParseMeal(c.Param("meal"))
	if err != nil {
		abortWithError(c, err)
		return "", "", false
	}
	return day, meal, true
}
