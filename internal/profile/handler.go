// File: internal/profile/handler.go
package profile

import (
	"errors"
	"time"

	"cv_bank_backend/internal/common"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Handler exposes the profile routes.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new profile handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes sets up the profile and admin routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc, adminRoleMW gin.HandlerFunc) {
	profileGroup := router.Group("/profile")
	profileGroup.Use(authMW)
	{
		profileGroup.GET("", h.getOwnProfile)

		profileGroup.GET("/personal-data", h.getPersonalData)
		profileGroup.PUT("/personal-data", h.upsertPersonalData)

		profileGroup.GET("/experiences", h.listExperiences)
		profileGroup.POST("/experiences", h.createExperience)
		profileGroup.PUT("/experiences/:id", h.updateExperience)
		profileGroup.DELETE("/experiences/:id", h.deleteExperience)

		profileGroup.GET("/education", h.listAcademicRecords)
		profileGroup.POST("/education", h.createAcademicRecord)
		profileGroup.PUT("/education/:id", h.updateAcademicRecord)
		profileGroup.DELETE("/education/:id", h.deleteAcademicRecord)

		profileGroup.GET("/languages", h.listLanguages)
		profileGroup.POST("/languages", h.createLanguage)
		profileGroup.DELETE("/languages/:id", h.deleteLanguage)

		profileGroup.GET("/tools", h.listTools)
		profileGroup.POST("/tools", h.createTool)
		profileGroup.DELETE("/tools/:id", h.deleteTool)

		profileGroup.GET("/references", h.listReferences)
		profileGroup.POST("/references", h.createReference)
		profileGroup.PUT("/references/:id", h.updateReference)
		profileGroup.DELETE("/references/:id", h.deleteReference)

		profileGroup.GET("/settings", h.getSettings)
		profileGroup.PUT("/settings", h.upsertSettings)
	}

	adminGroup := router.Group("/admin")
	adminGroup.Use(authMW)
	adminGroup.Use(adminRoleMW)
	{
		adminGroup.GET("/users", h.adminListProfiles)
		adminGroup.GET("/users/:id/profile", h.adminGetProfile)
		adminGroup.GET("/dashboard/stats", h.adminDashboardStats)
	}
}

// --- Request DTOs ---

// PersonalDataRequest carries the singleton upsert payload.
type PersonalDataRequest struct {
	FullName string `json:"full_name" binding:"omitempty,max=255"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"omitempty,max=50"`
	Address  string `json:"address" binding:"omitempty,max=255"`
	City     string `json:"city" binding:"omitempty,max=100"`
	Country  string `json:"country" binding:"omitempty,max=100"`
	Summary  string `json:"summary"`
}

// ExperienceRequest carries one work-history entry. Dates are YYYY-MM-DD.
type ExperienceRequest struct {
	Company     string  `json:"company" binding:"required,max=255"`
	Role        string  `json:"role" binding:"required,max=255"`
	Country     string  `json:"country" binding:"omitempty,max=100"`
	StartDate   string  `json:"start_date" binding:"required"`
	EndDate     *string `json:"end_date"`
	IsCurrent   bool    `json:"is_current"`
	Description string  `json:"description"`
}

// AcademicRecordRequest carries one education entry.
type AcademicRecordRequest struct {
	Institution  string  `json:"institution" binding:"required,max=255"`
	Degree       string  `json:"degree" binding:"required,max=255"`
	FieldOfStudy string  `json:"field_of_study" binding:"omitempty,max=255"`
	StartDate    string  `json:"start_date" binding:"required"`
	EndDate      *string `json:"end_date"`
	InProgress   bool    `json:"in_progress"`
	Description  string  `json:"description"`
}

// LanguageRequest carries one spoken-language entry.
type LanguageRequest struct {
	Name  string `json:"name" binding:"required,max=100"`
	Level string `json:"level" binding:"required"`
}

// ToolRequest carries one tool entry.
type ToolRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Category string `json:"category" binding:"omitempty,max=100"`
}

// ReferenceRequest carries one reference contact.
type ReferenceRequest struct {
	Name         string `json:"name" binding:"required,max=255"`
	Relationship string `json:"relationship" binding:"omitempty,max=100"`
	Company      string `json:"company" binding:"omitempty,max=255"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone" binding:"omitempty,max=50"`
}

// SettingsRequest carries the notification preference upsert.
type SettingsRequest struct {
	NotifyNewOpportunity bool `json:"notify_new_opportunities"`
}

// --- Helpers ---

func (h *Handler) bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(validationErrs)))
		} else {
			common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid request payload: "+err.Error()))
		}
		return false
	}
	return true
}

func (h *Handler) ownerID(c *gin.Context) (uuid.UUID, bool) {
	ownerID := common.GetUserIDFromContext(c)
	if ownerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized.WithDetails("No authenticated user in request context."))
		return uuid.Nil, false
	}
	return ownerID, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid ID format in URL."))
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateLayout, value)
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func experienceFromRequest(req *ExperienceRequest) (*ProfessionalExperience, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("start_date must be formatted as YYYY-MM-DD.")
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("end_date must be formatted as YYYY-MM-DD.")
	}
	return &ProfessionalExperience{
		Company:     req.Company,
		Role:        req.Role,
		Country:     req.Country,
		StartDate:   start,
		EndDate:     end,
		IsCurrent:   req.IsCurrent,
		Description: req.Description,
	}, nil
}

func academicRecordFromRequest(req *AcademicRecordRequest) (*AcademicRecord, error) {
	start, err := parseDate(req.StartDate)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("start_date must be formatted as YYYY-MM-DD.")
	}
	end, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, common.ErrBadRequest.WithDetails("end_date must be formatted as YYYY-MM-DD.")
	}
	return &AcademicRecord{
		Institution:  req.Institution,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		StartDate:    start,
		EndDate:      end,
		InProgress:   req.InProgress,
		Description:  req.Description,
	}, nil
}

// --- Aggregate ---

func (h *Handler) getOwnProfile(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	profile, err := h.service.GetOwnProfile(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Profile retrieved successfully.", profile)
}

// --- Personal data ---

func (h *Handler) getPersonalData(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	data, err := h.service.GetPersonalData(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Personal data retrieved successfully.", data)
}

func (h *Handler) upsertPersonalData(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req PersonalDataRequest
	if !h.bindJSON(c, &req) {
		return
	}
	data := &PersonalData{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		Country:  req.Country,
		Summary:  req.Summary,
	}
	if err := h.service.UpsertPersonalData(c.Request.Context(), ownerID, data); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Personal data saved successfully.", data)
}

// --- Experiences ---

func (h *Handler) listExperiences(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	exps, err := h.service.ListExperiences(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Experiences retrieved successfully.", exps)
}

func (h *Handler) createExperience(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req ExperienceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	exp, err := experienceFromRequest(&req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.CreateExperience(c.Request.Context(), ownerID, exp); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Experience added successfully.", exp)
}

func (h *Handler) updateExperience(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ExperienceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	exp, err := experienceFromRequest(&req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.UpdateExperience(c.Request.Context(), ownerID, id, exp); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Experience updated successfully.", exp)
}

func (h *Handler) deleteExperience(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteExperience(c.Request.Context(), ownerID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// --- Education ---

func (h *Handler) listAcademicRecords(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	recs, err := h.service.ListAcademicRecords(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Academic records retrieved successfully.", recs)
}

func (h *Handler) createAcademicRecord(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req AcademicRecordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rec, err := academicRecordFromRequest(&req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.CreateAcademicRecord(c.Request.Context(), ownerID, rec); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Academic record added successfully.", rec)
}

func (h *Handler) updateAcademicRecord(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req AcademicRecordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	rec, err := academicRecordFromRequest(&req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	if err := h.service.UpdateAcademicRecord(c.Request.Context(), ownerID, id, rec); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Academic record updated successfully.", rec)
}

func (h *Handler) deleteAcademicRecord(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteAcademicRecord(c.Request.Context(), ownerID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// --- Languages ---

func (h *Handler) listLanguages(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	langs, err := h.service.ListLanguages(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Languages retrieved successfully.", langs)
}

func (h *Handler) createLanguage(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req LanguageRequest
	if !h.bindJSON(c, &req) {
		return
	}
	lang := &Language{Name: req.Name, Level: req.Level}
	if err := h.service.CreateLanguage(c.Request.Context(), ownerID, lang); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Language added successfully.", lang)
}

func (h *Handler) deleteLanguage(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteLanguage(c.Request.Context(), ownerID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// --- Tools ---

func (h *Handler) listTools(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	tools, err := h.service.ListTools(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Tools retrieved successfully.", tools)
}

func (h *Handler) createTool(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req ToolRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tool := &Tool{Name: req.Name, Category: req.Category}
	if err := h.service.CreateTool(c.Request.Context(), ownerID, tool); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Tool added successfully.", tool)
}

func (h *Handler) deleteTool(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteTool(c.Request.Context(), ownerID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// --- References ---

func (h *Handler) listReferences(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	refs, err := h.service.ListReferences(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "References retrieved successfully.", refs)
}

func (h *Handler) createReference(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req ReferenceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ref := &Reference{
		Name:         req.Name,
		Relationship: req.Relationship,
		Company:      req.Company,
		Email:        req.Email,
		Phone:        req.Phone,
	}
	if err := h.service.CreateReference(c.Request.Context(), ownerID, ref); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Reference added successfully.", ref)
}

func (h *Handler) updateReference(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req ReferenceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ref := &Reference{
		Name:         req.Name,
		Relationship: req.Relationship,
		Company:      req.Company,
		Email:        req.Email,
		Phone:        req.Phone,
	}
	if err := h.service.UpdateReference(c.Request.Context(), ownerID, id, ref); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Reference updated successfully.", ref)
}

func (h *Handler) deleteReference(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteReference(c.Request.Context(), ownerID, id); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondNoContent(c)
}

// --- Settings ---

func (h *Handler) getSettings(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	settings, err := h.service.GetSettings(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Settings retrieved successfully.", settings)
}

func (h *Handler) upsertSettings(c *gin.Context) {
	ownerID, ok := h.ownerID(c)
	if !ok {
		return
	}
	var req SettingsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	settings := &UserSettings{NotifyNewOpportunity: req.NotifyNewOpportunity}
	if err := h.service.UpsertSettings(c.Request.Context(), ownerID, settings); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Settings saved successfully.", settings)
}

// --- Admin ---

func (h *Handler) adminListProfiles(c *gin.Context) {
	profiles, err := h.service.ListAllProfiles(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Candidate profiles retrieved successfully.", profiles)
}

func (h *Handler) adminGetProfile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	up, err := h.service.GetProfileForUser(c.Request.Context(), id)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Candidate profile retrieved successfully.", up)
}

func (h *Handler) adminDashboardStats(c *gin.Context) {
	stats, err := h.service.DashboardStats(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Dashboard statistics computed successfully.", stats)
}
