package advisory

import (
	"strconv"
	"strings"
)

const advisorPersona = "You are an empathetic, practical agricultural advisor for small Indian farmers. " +
	"Keep answers short, actionable, step-by-step (max 6 steps). " +
	"Use simple words and include one immediate action the farmer can take today. "

// languageDirective is the only part of the system prompt that depends on lang.
func languageDirective(lang string) string {
	if lang == LangEnglish {
		return "Reply in English."
	}
	return "Reply in simple Hindi."
}

// SystemPrompt returns the advisor instruction for a normalized language tag.
func SystemPrompt(lang string) string {
	return advisorPersona + languageDirective(lang)
}

// UserPrompt renders the location, crop and query into the user message.
// Absent values are written as None.
func UserPrompt(req AdviceRequest) string {
	var sb strings.Builder
	sb.WriteString("Location: lat=")
	sb.WriteString(formatFloat(req.Lat))
	sb.WriteString(", lon=")
	sb.WriteString(formatFloat(req.Lon))
	sb.WriteString(". Crop=")
	if req.Crop != nil {
		sb.WriteString(*req.Crop)
	} else {
		sb.WriteString("None")
	}
	sb.WriteString(". Query: ")
	sb.WriteString(req.Text)
	return sb.String()
}

func formatFloat(v *float64) string {
	if v == nil {
		return "None"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
