package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"staffdir/internal/domain"
	"staffdir/internal/metrics"
	"staffdir/internal/service"
	"staffdir/internal/token"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	auth      service.AuthService
	users     service.UserService
	employees service.EmployeeService
	codec     *token.Codec
	logger    *logrus.Logger
}

func NewHandler(auth service.AuthService, users service.UserService, employees service.EmployeeService, codec *token.Codec, logger *logrus.Logger) *Handler {
	return &Handler{
		auth:      auth,
		users:     users,
		employees: employees,
		codec:     codec,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(metrics.Instrument())
	router.Use(authenticateRequests(h.users, h.codec, h.logger))

	router.POST("/register", h.register)
	router.POST("/authenticate", h.authenticate)
	router.POST("/refreshToken", h.refreshToken)
	router.GET("/metrics", metrics.Handler())
	router.GET("/api/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
	})

	employees := router.Group("/employees")
	employees.Use(requireAuth())
	{
		employees.GET("/:id", h.getEmployee)
		employees.POST("", h.createEmployee)
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type departmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type employeeResponse struct {
	ID         int64              `json:"id"`
	FirstName  string             `json:"firstName"`
	LastName   string             `json:"lastName"`
	Email      string             `json:"email"`
	Department departmentResponse `json:"department"`
}

type createEmployeeRequest struct {
	FirstName  string `json:"firstName" binding:"required"`
	LastName   string `json:"lastName" binding:"required"`
	Email      string `json:"email"`
	Department struct {
		Name string `json:"name" binding:"required"`
	} `json:"department" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			metrics.ObserveAuthFlow("register", "conflict")
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		metrics.ObserveAuthFlow("register", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.ObserveAuthFlow("register", "ok")
	c.JSON(http.StatusOK, userResponse{ID: user.ID, Username: user.Username})
}

func (h *Handler) authenticate(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			metrics.ObserveAuthFlow("authenticate", "rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		metrics.ObserveAuthFlow("authenticate", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.ObserveAuthFlow("authenticate", "ok")
	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) refreshToken(c *gin.Context) {
	var req refreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) || errors.Is(err, service.ErrExpiredRefreshToken) {
			metrics.ObserveAuthFlow("refresh", "rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		metrics.ObserveAuthFlow("refresh", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	metrics.ObserveAuthFlow("refresh", "ok")
	c.JSON(http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) getEmployee(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid employee id"})
		return
	}

	employee, err := h.employees.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrEmployeeNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, employeeToResponse(employee))
}

func (h *Handler) createEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	employee := &domain.Employee{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Department: domain.Department{Name: req.Department.Name},
	}

	created, err := h.employees.Create(c.Request.Context(), employee)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, employeeToResponse(created))
}

func employeeToResponse(employee *domain.Employee) employeeResponse {
	return employeeResponse{
		ID:        employee.ID,
		FirstName: employee.FirstName,
		LastName:  employee.LastName,
		Email:     employee.Email,
		Department: departmentResponse{
			ID:   employee.Department.ID,
			Name: employee.Department.Name,
		},
	}
}
