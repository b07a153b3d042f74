package embed_data

import _ "embed"

//go:embed tree-sitter/queries/python.json
var PythonQuery []byte
