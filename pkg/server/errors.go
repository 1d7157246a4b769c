package server

import (
	"net/http"

	"github.com/dhikaid/graphview/pkg/serializers"
)

// Response messages. The wording is part of the service contract; existing
// clients match on these strings.
const (
	msgVerticesEdgesRequired = "Vertices and edges are required."
	msgNameRequired          = "Name is required."
	msgFromToRequired        = "From and to are required."
	msgTooManyRequests       = "Too many requests. Please try again later."
	msgMethodNotAllowed      = "Method not allowed"

	msgErrReadingDocument = "Error reading edges file."
	msgErrWritingDocument = "Error writing edges file."
	msgErrResetDocument   = "Error resetting edges file."
	msgErrStorageFolder   = "Error reading storage folder."
	msgErrRendering       = "Error rendering graph image."

	msgVertexAdded = "Vertex added successfully from %s."
	msgEdgeAdded   = "Edge added successfully."
	msgResetDone   = "Edges file reset and images deleted successfully."
)

// writeError surfaces a terminal error to the caller as plain text. Every
// error in this service is terminal; there are no retries.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	serializers.RespondText(w, statusCode, message)
}
