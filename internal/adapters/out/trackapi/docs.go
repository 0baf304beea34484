// Package trackapi implements the outbound gateway to the external inventory
// tracking system. Every operation is a JSON POST to a single endpoint with an
// action field selecting the behavior: login, inventory_split, inventory_move
// or inventory_manifest.
//
// The package classifies remote failures into AuthError, TransientError,
// SemanticError and ProtocolError so the orchestration layer can decide
// whether to abort the trip, retry, or fail a single order.
package trackapi
