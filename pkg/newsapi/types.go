package newsapi

import (
	"fmt"
	"strings"
)

// Package newsapi implements a typed client for the NewsAPI.org v2 contract:
// /top-headlines, /everything and /sources.

// DefaultBaseURL is the production NewsAPI endpoint.
const DefaultBaseURL = "https://newsapi.org/v2"

// Sort strategies accepted by the /everything endpoint.
const (
	SortPopularity  = "popularity"
	SortPublishedAt = "publishedAt"
	SortRelevancy   = "relevancy"
)

const (
	DefaultCategory = "general"
	DefaultLanguage = "en"
)

// ValidCategories is the fixed category enumeration the upstream accepts.
var ValidCategories = []string{
	"business", "entertainment", "general", "health", "science", "sports", "technology",
}

// ValidLanguages is the fixed language enumeration the upstream accepts.
var ValidLanguages = []string{
	"ar", "de", "en", "es", "fr", "he", "it", "nl", "no", "pt", "ru", "sv", "ud", "zh",
}

var (
	categorySet = toSet(ValidCategories)
	languageSet = toSet(ValidLanguages)
	sortSet     = toSet([]string{SortPopularity, SortPublishedAt, SortRelevancy})
)

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// IsValidCategory reports whether category is in the upstream enumeration.
func IsValidCategory(category string) bool {
	_, ok := categorySet[category]
	return ok
}

// IsValidLanguage reports whether language is in the upstream enumeration.
func IsValidLanguage(language string) bool {
	_, ok := languageSet[language]
	return ok
}

// IsValidSort reports whether sortBy is in the upstream enumeration.
func IsValidSort(sortBy string) bool {
	_, ok := sortSet[sortBy]
	return ok
}

// NormalizeCategory silently corrects an invalid category to the default.
func NormalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if !IsValidCategory(category) {
		return DefaultCategory
	}
	return category
}

// NormalizeLanguage silently corrects an invalid language to the default.
func NormalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if !IsValidLanguage(language) {
		return DefaultLanguage
	}
	return language
}

// NormalizeSort silently corrects an invalid sort strategy to the default.
func NormalizeSort(sortBy string) string {
	sortBy = strings.TrimSpace(sortBy)
	if !IsValidSort(sortBy) {
		return SortPublishedAt
	}
	return sortBy
}

// Envelope is the common response wrapper returned by every endpoint.
type Envelope struct {
	Status       string       `json:"status"`
	Code         string       `json:"code,omitempty"`
	Message      string       `json:"message,omitempty"`
	TotalResults int          `json:"totalResults,omitempty"`
	Articles     []RawArticle `json:"articles,omitempty"`
	Sources      []RawSource  `json:"sources,omitempty"`
}

// RawArticle is the upstream article shape before internal mapping.
type RawArticle struct {
	Source      *RawSourceRef `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	URLToImage  string        `json:"urlToImage"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

// RawSourceRef is the nested source reference on an article.
type RawSourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawSource is an entry from the /sources listing.
type RawSource struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Category    string `json:"category"`
	Language    string `json:"language"`
	Country     string `json:"country"`
}

// APIError is returned when the upstream answers with a non-ok envelope or a
// non-200 HTTP status.
type APIError struct {
	HTTPStatus int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown upstream error"
	}
	if e.Code != "" {
		return fmt.Sprintf("newsapi: %s (code %s, http %d)", msg, e.Code, e.HTTPStatus)
	}
	return fmt.Sprintf("newsapi: %s (http %d)", msg, e.HTTPStatus)
}
