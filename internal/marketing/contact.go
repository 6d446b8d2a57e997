package marketing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"harrys-team/backend/internal/datastore"
	"harrys-team/backend/internal/response"
)

// ContactRequest is the contact form body.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,min=2"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,min=5"`
	Message string `json:"message" binding:"required,min=10"`
}

// contactFields maps struct fields to their JSON name and client message.
var contactFields = map[string]response.FieldError{
	"Name":    {Field: "name", Message: "Name must be at least 2 characters"},
	"Email":   {Field: "email", Message: "Please enter a valid email address"},
	"Subject": {Field: "subject", Message: "Subject must be at least 5 characters"},
	"Message": {Field: "message", Message: "Message must be at least 10 characters"},
}

func contactFieldErrors(err error) []response.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []response.FieldError{}
	}
	out := make([]response.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		if known, ok := contactFields[fe.Field()]; ok {
			out = append(out, known)
			continue
		}
		out = append(out, response.FieldError{Field: fe.Field(), Message: fe.Error()})
	}
	return out
}

// SubmitContact validates and stores a contact form submission, then
// publishes a notification. A failed notification is logged only.
func (h *Handler) SubmitContact(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, "Invalid input data", contactFieldErrors(err))
		return
	}

	msg, err := h.store.CreateContactMessage(c.Request.Context(), datastore.ContactMessageInput{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
	})
	if err != nil {
		h.logger.Error("failed to save contact message", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "An error occurred while processing your request")
		return
	}
	h.logger.Info("contact message received", zap.String("id", msg.ID))

	if err := h.notifier.NotifyContactMessage(c.Request.Context(), msg); err != nil {
		h.logger.Warn("contact notification failed", zap.String("id", msg.ID), zap.Error(err))
	}
	response.Message(c, http.StatusOK, "Thank you for your message! We will get back to you soon.")
}
