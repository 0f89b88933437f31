package handlers

import "net/http"

// InfoResponse describes the running service.
type InfoResponse struct {
	Service  string `json:"service"`
	Port     int    `json:"port"`
	Root     string `json:"root"`
	DBDriver string `json:"db_driver"`
}

// InfoHandler serves GET /.
type InfoHandler struct {
	info InfoResponse
}

// NewInfoHandler creates a new InfoHandler.
func NewInfoHandler(port int, root, dbDriver string) *InfoHandler {
	return &InfoHandler{
		info: InfoResponse{
			Service:  "folder-catalog",
			Port:     port,
			Root:     root,
			DBDriver: dbDriver,
		},
	}
}

// ServeHTTP writes the service description.
func (h *InfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.info)
}
