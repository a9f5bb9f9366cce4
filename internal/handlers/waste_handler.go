package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"ecowaste/internal/middleware"
	"ecowaste/internal/models"
	"ecowaste/internal/services"
	"ecowaste/internal/utils"
	"ecowaste/internal/validators"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WasteHandler struct {
	wasteService    services.WasteService
	feedbackService services.FeedbackService
}

func NewWasteHandler(wasteService services.WasteService, feedbackService services.FeedbackService) *WasteHandler {
	return &WasteHandler{
		wasteService:    wasteService,
		feedbackService: feedbackService,
	}
}

// CreateRequest accepts either a multipart form (optional "image" file,
// "bankDetails" as a JSON string) or a JSON body.
func (h *WasteHandler) CreateRequest(c *gin.Context) {
	var request validators.CreateWasteRequest
	var image *multipart.FileHeader

	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindWith(&request, binding.FormMultipart); err != nil {
			utils.BadRequestResponse(c, "Invalid request: "+err.Error())
			return
		}
		if raw := c.PostForm("bankDetails"); raw != "" {
			request.BankDetails = json.RawMessage(raw)
		}

		file, err := c.FormFile("image")
		switch {
		case err == nil:
			image = file
		case !errors.Is(err, http.ErrMissingFile):
			utils.BadRequestResponse(c, "Invalid image upload")
			return
		}
	} else if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	wasteRequest, err := h.wasteService.Create(c.Request.Context(), &request, middleware.GetUserID(c), image)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Waste request submitted successfully! We will contact you soon.", wasteRequest)
}

func (h *WasteHandler) ListMine(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == nil {
		utils.UnauthorizedResponse(c, utils.ErrMsgUnauthorized)
		return
	}

	requests, err := h.wasteService.ListMine(c.Request.Context(), *userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.ListResponse(c, requests, &utils.ListMeta{Count: len(requests)})
}

func (h *WasteHandler) GetRequest(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	wasteRequest, err := h.wasteService.GetOne(c.Request.Context(), id, middleware.GetIdentity(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "", wasteRequest)
}

func (h *WasteHandler) UpdateStatus(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	var request validators.UpdateStatusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	wasteRequest, err := h.wasteService.UpdateStatus(c.Request.Context(), id, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "", wasteRequest)
}

// ListAll serves the admin view: ?status=&page=&limit=.
func (h *WasteHandler) ListAll(c *gin.Context) {
	var query validators.ListWasteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query: "+err.Error())
		return
	}
	if err := validators.ValidateListWasteQuery(&query); err != nil {
		utils.HandleError(c, err)
		return
	}

	var status *models.WasteStatus
	if query.Status != "" {
		s := models.WasteStatus(query.Status)
		status = &s
	}

	params := utils.GetPaginationParams(c)
	requests, total, err := h.wasteService.ListAll(c.Request.Context(), status, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.ListResponse(c, requests, params.ListMeta(len(requests), total))
}

func (h *WasteHandler) DeleteRequest(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	if err := h.wasteService.Delete(c.Request.Context(), id, middleware.GetIdentity(c)); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Waste request deleted successfully", nil)
}

func (h *WasteHandler) AddFeedback(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	var request validators.AddFeedbackRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	wasteRequest, err := h.feedbackService.AddFeedback(c.Request.Context(), id, middleware.GetIdentity(c), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Feedback submitted successfully", wasteRequest)
}

func (h *WasteHandler) ToggleFeatured(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}

	wasteRequest, err := h.feedbackService.ToggleFeatured(c.Request.Context(), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "", wasteRequest)
}

func (h *WasteHandler) ListTestimonials(c *gin.Context) {
	testimonials, err := h.feedbackService.ListTestimonials(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.ListResponse(c, testimonials, &utils.ListMeta{Count: len(testimonials)})
}

// requestID parses the :id path parameter, writing a 404 when it is not a
// valid object id.
func requestID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := validators.ValidateObjectID(c.Param("id"))
	if err != nil {
		utils.HandleError(c, utils.NewAppError(utils.ErrNotFound, utils.ErrMsgRequestNotFound))
		return primitive.NilObjectID, false
	}
	return id, true
}
