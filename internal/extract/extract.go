// Package extract derives category-conditional structured sub-fields from a
// classified record: severity and technical details for bugs, impact for
// feature requests. Extraction enriches technical_details and never changes
// the category.
package extract

import (
	"fmt"
	"regexp"
	"strings"

	"feedbacktriage/internal/models"
)

var (
	severeKeywords   = []string{"crash", "data loss", "lost all", "cannot login", "cannot log in"}
	wideKeywords     = []string{"all users", "everyone", "essential", "many users", "would help", "important"}
	simpleKeywords   = []string{"simple", "easy", "basic", "just add"}
	complexKeywords  = []string{"complex", "difficult", "integration", "system"}
	deviceKeywords   = []string{"iphone", "ipad", "android", "samsung", "galaxy", "pixel", "huawei"}
	iosVersionRe     = regexp.MustCompile(`ios\s*(\d+\.?\d*)`)
	androidVersionRe = regexp.MustCompile(`android\s*(\d+\.?\d*)`)
	appVersionRe     = regexp.MustCompile(`version\s*(\d+\.\d+\.?\d*)`)
)

// Extract returns nil for categories that have no extractor.
func Extract(rec models.FeedbackRecord, cls models.ClassificationResult) *models.ExtractionDetails {
	switch cls.Category {
	case models.CategoryBug:
		return extractBug(rec)
	case models.CategoryFeatureRequest:
		return extractFeature(rec)
	default:
		return nil
	}
}

func extractBug(rec models.FeedbackRecord) *models.ExtractionDetails {
	text := strings.ToLower(rec.Text)

	severity := models.SeverityModerate
	for _, kw := range severeKeywords {
		if strings.Contains(text, kw) {
			severity = models.SeveritySevere
			break
		}
	}

	details := &models.ExtractionDetails{Severity: severity}

	for _, device := range deviceKeywords {
		if strings.Contains(text, device) {
			details.Devices = append(details.Devices, device)
		}
	}
	if m := iosVersionRe.FindStringSubmatch(text); m != nil {
		details.OSVersions = append(details.OSVersions, "iOS "+m[1])
	}
	if m := androidVersionRe.FindStringSubmatch(text); m != nil {
		details.OSVersions = append(details.OSVersions, "Android "+m[1])
	}
	if m := appVersionRe.FindStringSubmatch(text); m != nil {
		details.AppVersion = m[1]
	} else if rec.Metadata.AppVersion != "" {
		details.AppVersion = rec.Metadata.AppVersion
	}
	details.HasReproSteps = strings.Contains(text, "steps") || strings.Contains(text, "reproduce")

	return details
}

func extractFeature(rec models.FeedbackRecord) *models.ExtractionDetails {
	text := strings.ToLower(rec.Text)

	impact := models.ImpactNiche
	for _, kw := range wideKeywords {
		if strings.Contains(text, kw) {
			impact = models.ImpactWide
			break
		}
	}

	complexity := "Medium"
	for _, kw := range simpleKeywords {
		if strings.Contains(text, kw) {
			complexity = "Low"
			break
		}
	}
	if complexity == "Medium" {
		for _, kw := range complexKeywords {
			if strings.Contains(text, kw) {
				complexity = "High"
				break
			}
		}
	}

	return &models.ExtractionDetails{
		Impact:     impact,
		Complexity: complexity,
	}
}

// Summary renders extraction details as the ticket's technical_details field.
func Summary(details *models.ExtractionDetails) string {
	if details == nil {
		return ""
	}

	var parts []string
	if details.Severity != "" {
		parts = append(parts, "Severity: "+string(details.Severity))
	}
	for _, device := range details.Devices {
		parts = append(parts, "Device: "+device)
	}
	for _, os := range details.OSVersions {
		parts = append(parts, "OS: "+os)
	}
	if details.AppVersion != "" {
		parts = append(parts, "App Version: "+details.AppVersion)
	}
	if details.HasReproSteps {
		parts = append(parts, "Contains reproduction steps")
	}
	if details.Impact != "" {
		parts = append(parts, fmt.Sprintf("Impact: %s", details.Impact))
	}
	if details.Complexity != "" {
		parts = append(parts, "Complexity: "+details.Complexity)
	}

	if len(parts) == 0 {
		return "No technical details found"
	}
	return strings.Join(parts, "; ")
}
