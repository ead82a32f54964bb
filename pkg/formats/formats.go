// Package formats provides parsers for Nihilistic engine containers: NOD
// model meshes, NIL level geometry, and NSA material definitions. Parsed
// containers assemble into the shared mesh representation via BuildMesh.
package formats
