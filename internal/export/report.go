// Package export renders analysis results for people and spreadsheets.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	apperrors "getconnected/internal/common/errors"
	"getconnected/internal/recommendation"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
	FormatText = "text"
)

// Formats lists the accepted export formats.
var Formats = []string{FormatJSON, FormatCSV, FormatHTML, FormatText}

type Member struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type GroupInfo struct {
	ID      string   `json:"id"`
	Members []Member `json:"members"`
}

// Report is the snapshot written by every format. Engine output is embedded
// as returned.
type Report struct {
	Timestamp            time.Time                       `json:"timestamp"`
	Group                GroupInfo                       `json:"group"`
	Analysis             string                          `json:"analysis"`
	CommonPlatforms      []recommendation.CommonPlatform `json:"commonPlatforms"`
	RecommendedPlatforms []recommendation.Recommendation `json:"recommendations"`
	RecommendationReason string                          `json:"recommendationReason"`
}

// Write renders rep in the named format.
func Write(w io.Writer, format string, rep Report) error {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		return WriteJSON(w, rep)
	case FormatCSV:
		return WriteCSV(w, rep)
	case FormatHTML:
		return WriteHTML(w, rep)
	case FormatText:
		return WriteText(w, rep)
	default:
		return apperrors.NewUnsupportedFormatError(format)
	}
}

// ContentType returns the media type for a format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Filename is the attachment name used for downloads.
func Filename(format string) string {
	ext := strings.ToLower(format)
	if ext == FormatText {
		ext = "txt"
	}
	if ext == "" {
		ext = FormatJSON
	}
	return fmt.Sprintf("group-analysis.%s", ext)
}
