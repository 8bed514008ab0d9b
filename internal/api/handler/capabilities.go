package handler

import (
	"net/http"

	"github.com/metobs/metobs-edr/internal/api/response"
	"github.com/metobs/metobs-edr/internal/edr"
)

// conformanceClasses lists the OGC conformance classes this API implements.
var conformanceClasses = []string{
	"http://www.opengis.net/spec/ogcapi-edr-1/1.1/conf/core",
	"http://www.opengis.net/spec/ogcapi-common-1/1.0/conf/core",
	"http://www.opengis.net/spec/ogcapi-common-2/1.0/conf/collections",
	"http://www.opengis.net/spec/ogcapi-edr-1/1.1/conf/oas30",
	"http://www.opengis.net/spec/ogcapi-edr-1/1.1/conf/edr-geojson",
	"http://www.opengis.net/spec/ogcapi-edr-1/1.1/conf/covjson",
}

// landingPage is the OGC API landing page document.
type landingPage struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Keywords    []string   `json:"keywords,omitempty"`
	Provider    *provider  `json:"provider,omitempty"`
	Contact     *contact   `json:"contact,omitempty"`
	Links       []edr.Link `json:"links"`
}

type provider struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type contact struct {
	Email string `json:"email,omitempty"`
}

// conformance is the OGC API conformance declaration document.
type conformance struct {
	ConformsTo []string `json:"conformsTo"`
}

// healthStatus is the health endpoint payload.
type healthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// CapabilitiesConfig holds configuration for the capabilities handler.
type CapabilitiesConfig struct {
	Version      string
	Title        string
	Description  string
	Keywords     []string
	ProviderName string
	ProviderURL  string
	ContactEmail string
}

// CapabilitiesHandler serves the landing page, conformance declaration and
// health endpoints.
type CapabilitiesHandler struct {
	config CapabilitiesConfig
}

// NewCapabilitiesHandler creates a new CapabilitiesHandler.
func NewCapabilitiesHandler(config CapabilitiesConfig) *CapabilitiesHandler {
	return &CapabilitiesHandler{config: config}
}

// Health handles GET /health.
func (h *CapabilitiesHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, healthStatus{Status: "ok", Version: h.config.Version})
}

// LandingPage handles GET /.
func (h *CapabilitiesHandler) LandingPage(w http.ResponseWriter, r *http.Request) {
	root := baseURL(r)

	page := landingPage{
		Title:       h.config.Title,
		Description: h.config.Description,
		Keywords:    h.config.Keywords,
		Links: []edr.Link{
			{Href: root + "/", Rel: "self", Title: "Landing page in JSON"},
			{Href: root + "/conformance", Rel: "data", Title: "Conformance declaration in JSON"},
			{Href: root + "/collections", Rel: "data", Title: "Collections metadata in JSON"},
		},
	}
	if h.config.ProviderName != "" {
		page.Provider = &provider{Name: h.config.ProviderName, URL: h.config.ProviderURL}
	}
	if h.config.ContactEmail != "" {
		page.Contact = &contact{Email: h.config.ContactEmail}
	}

	response.JSON(w, r, http.StatusOK, page)
}

// Conformance handles GET /conformance.
func (h *CapabilitiesHandler) Conformance(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, conformance{ConformsTo: conformanceClasses})
}
