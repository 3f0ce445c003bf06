package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"invois/internal/service"
)

// UploadHandler handles logo and payment QR image uploads.
type UploadHandler struct {
	fileService service.FileService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(fileService service.FileService) *UploadHandler {
	return &UploadHandler{fileService: fileService}
}

// UploadLogo handles POST /api/v1/uploads/logo
// @Summary Upload a company logo
// @Description Upload a jpg/png logo; returns the opaque key to store on documents plus a presigned display URL
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file (jpg/png)"
// @Success 201 {object} Response{data=service.UploadedImage} "Stored image"
// @Failure 400 {object} ErrorResponseBody "Unsupported file type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /uploads/logo [post]
func (h *UploadHandler) UploadLogo(c *gin.Context) {
	h.upload(c, service.ImageKindLogo)
}

// UploadQRCode handles POST /api/v1/uploads/qrcode
// @Summary Upload a payment QR code image
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file (jpg/png)"
// @Success 201 {object} Response{data=service.UploadedImage} "Stored image"
// @Failure 400 {object} ErrorResponseBody "Unsupported file type"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Security BearerAuth
// @Router /uploads/qrcode [post]
func (h *UploadHandler) UploadQRCode(c *gin.Context) {
	h.upload(c, service.ImageKindQRCode)
}

func (h *UploadHandler) upload(c *gin.Context, kind service.ImageKind) {
	userID, _, ok := extractAuthContext(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "file is required")
		return
	}
	defer file.Close()

	img, err := h.fileService.UploadImage(c.Request.Context(), service.UploadImageInput{
		OwnerID: userID,
		Kind:    kind,
		File:    file,
		Header:  header,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, img)
}
