package handlers

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/saadsaiyed/pdf-to-shopify/internal/domain"
	"github.com/saadsaiyed/pdf-to-shopify/internal/service"
)

// Submitter is the submission service as the handlers use it
type Submitter interface {
	SubmitPDF(ctx context.Context, sub service.PDFSubmission) (*service.SubmissionResult, error)
	SubmitItemList(ctx context.Context, sub service.ItemListSubmission) (*service.SubmissionResult, error)
	ListSubmissions(ctx context.Context, limit int) ([]*domain.Submission, error)
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
}

// HandleSubmitPDF handles POST /v1/submissions/pdf (multipart: customerName, poNumber, pdfFile)
func HandleSubmitPDF(svc Submitter, maxUpload int64, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUpload)

		var form service.PDFSubmitForm
		if err := c.ShouldBind(&form); err != nil {
			var tooLarge *http.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
				return
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		sub := service.PDFSubmission{
			CustomerName: form.CustomerName,
			PONumber:     form.PONumber,
		}

		fileHeader, err := c.FormFile("pdfFile")
		switch {
		case err == nil:
			file, err := fileHeader.Open()
			if err != nil {
				logger.Error("Failed to open uploaded PDF", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "error processing request"})
				return
			}
			defer file.Close()
			sub.Filename = fileHeader.Filename
			sub.Content = file
			sub.Size = fileHeader.Size
		case stderrors.Is(err, http.ErrMissingFile):
			// validated by the service together with the other fields
		default:
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		result, err := svc.SubmitPDF(c.Request.Context(), sub)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// HandleSubmitItemList handles POST /v1/submissions/items
func HandleSubmitItemList(svc Submitter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.ItemListRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":   "validation failed",
				"details": err.Error(),
			})
			return
		}

		result, err := svc.SubmitItemList(c.Request.Context(), service.ItemListSubmission{
			CustomerName: req.CustomerName,
			PONumber:     req.PONumber,
			LineItems:    req.LineItems,
			Quantities:   req.Quantity,
		})
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

// HandleListSubmissions handles GET /v1/submissions
func HandleListSubmissions(svc Submitter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		subs, err := svc.ListSubmissions(c.Request.Context(), queryLimit(c))
		if err != nil {
			respondError(c, err, logger)
			return
		}
		data := make([]gin.H, 0, len(subs))
		for _, s := range subs {
			data = append(data, submissionJSON(s))
		}
		c.JSON(http.StatusOK, gin.H{"data": data, "meta": gin.H{"count": len(data)}})
	}
}

// HandleGetSubmission handles GET /v1/submissions/:id
func HandleGetSubmission(svc Submitter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid submission ID"})
			return
		}
		s, err := svc.GetSubmission(c.Request.Context(), id)
		if err != nil {
			respondError(c, err, logger)
			return
		}
		c.JSON(http.StatusOK, submissionJSON(s))
	}
}

func submissionJSON(s *domain.Submission) gin.H {
	unresolved := s.UnresolvedCodes
	if unresolved == nil {
		unresolved = []string{}
	}
	return gin.H{
		"id":               s.ID.String(),
		"shop_name":        s.ShopName,
		"customer_name":    s.CustomerName,
		"customer_id":      s.CustomerID,
		"po_number":        s.PONumber,
		"source":           s.Source,
		"draft_order_id":   s.DraftOrderID,
		"line_item_count":  s.LineItemCount,
		"unresolved_codes": unresolved,
		"created_at":       s.CreatedAt,
	}
}
