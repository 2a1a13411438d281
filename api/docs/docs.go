// Package docs embeds the OpenAPI document served at /openapi.json and
// rendered by the swagger UI.
package docs

import _ "embed"

//go:embed openapi.json
var OpenAPI []byte
