// Package file provides HTTP handlers for resume upload and download.
package file

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/service"
	"github.com/XevilA/spu-nexus-sub000/internal/storage"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// FileController handles file related endpoints
type FileController struct {
	Portfolios *service.PortfolioService
	Storage    storage.Client
	Log        logrus.FieldLogger
}

// NewFileController creates a new instance of FileController
func NewFileController(portfolios *service.PortfolioService, storage storage.Client, log logrus.FieldLogger) *FileController {
	return &FileController{
		Portfolios: portfolios,
		Storage:    storage,
		Log:        log,
	}
}

// UploadResume handles the upload of a student's resume and attaches it to their latest portfolio.
// @Summary Upload resume file
// @Description Only file that smaller than 10 MB with .pdf extension is permitted. The text of the resume is extracted for advice requests.
// @Tags Portfolio
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param resume formData file true "Upload your resume file"
// @Success 200 {object} model.Portfolio "Successfully upload resume"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or missing file"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as student"
// @Failure 413 {object} utilities.ErrorResponse "File size is larger than 10 MB"
// @Failure 415 {object} utilities.ErrorResponse "File extension is not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Failure 502 {object} utilities.ErrorResponse "Storage error"
// @Router /portfolio/resume [post]
func (fc *FileController) UploadResume(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	rawFile, err := c.FormFile("resume")
	var maxBytesError *http.MaxBytesError
	if errors.As(err, &maxBytesError) {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}
	if rawFile.Size > storage.MaxResumeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{
			Error: "File size is larger than 10 MB",
		})
		return
	}

	extension := strings.ToLower(filepath.Ext(rawFile.Filename))
	if extension != ".pdf" {
		c.JSON(http.StatusUnsupportedMediaType, utilities.ErrorResponse{
			Error: fmt.Sprintf("Unsupported file extension: %s", extension),
		})
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot open file"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			fc.Log.WithError(err).Warn("Failed to close uploaded file")
		}
	}()

	fileBytes, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Cannot read file"})
		return
	}

	portfolio, err := fc.Portfolios.UploadResume(c.Request.Context(), session, rawFile.Filename, fileBytes)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, portfolio)
}

// GetResume sends the resume of a student's latest portfolio as a downloadable attachment.
// @Summary Download a student's resume
// @Description Visible to the owner, approvers, and employers when the portfolio is discoverable
// @Tags Portfolio
// @Produce octet-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param student_id path string true "Student ID"
// @Success 200 {string} binary "Successfully retrieve file"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or student id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to view this portfolio"
// @Failure 404 {object} utilities.ErrorResponse "No resume uploaded"
// @Failure 500 {object} utilities.ErrorResponse "Fail to send file content"
// @Router /students/{student_id}/resume [get]
func (fc *FileController) GetResume(c *gin.Context) {
	session, ok := utilities.RequireSession(c)
	if !ok {
		return
	}

	studentID, err := uuid.Parse(c.Param("student_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid student id"})
		return
	}

	file, err := fc.Portfolios.ResumeFile(c.Request.Context(), session, studentID)
	if err != nil {
		utilities.WriteError(c, err)
		return
	}

	fc.writeFileResponse(c, &file)
}

func (fc *FileController) writeFileResponse(c *gin.Context, file *model.File) {
	c.Writer.Header().Set("Content-Disposition", "attachment; filename="+fmt.Sprint(file.ID)+file.Extension)
	c.Writer.Header().Set("Content-Type", "application/octet-stream")

	if file.StorageObjectName != nil {
		if fc.Storage == nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Cloud storage is disabled while the requested file is stored remotely",
			})
			return
		}
		reader, size, err := fc.Storage.DownloadFile(c.Request.Context(), *file.StorageObjectName)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to download file from storage: %s", err.Error()),
			})
			return
		}
		defer func() {
			if err := reader.Close(); err != nil {
				fc.Log.WithError(err).Warn("Failed to close storage reader")
			}
		}()

		if size > 0 {
			c.Writer.Header().Set("Content-Length", fmt.Sprint(size))
		}
		if _, err := io.Copy(c.Writer, reader); err != nil {
			fc.handleWriterError(c)
		}
		return
	}

	c.Writer.Header().Set("Content-Length", fmt.Sprint(len(file.Content)))
	if _, err := c.Writer.Write(file.Content); err != nil {
		fc.handleWriterError(c)
	}
}

func (fc *FileController) handleWriterError(c *gin.Context) {
	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to send file content",
		})
	} else {
		c.Abort()
	}
}
