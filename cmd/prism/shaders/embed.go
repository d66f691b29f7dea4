// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// LitVertexShader is the vertex shader shared by every pass.
//
//go:embed lit.vert
var LitVertexShader string

// LitFragmentShader shades with the main light and point lights.
//
//go:embed lit.frag
var LitFragmentShader string

// MirrorFragmentShader samples the reflection cube map.
//
//go:embed mirror.frag
var MirrorFragmentShader string

// ShadowFragmentShader writes depth only, for the sun's shadow map.
//
//go:embed shadow.frag
var ShadowFragmentShader string
