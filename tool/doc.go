// Package tool implements the core of the Anther tool server: descriptors
// with typed parameter schemas, the startup-built registry of tools,
// resources, and prompts, and the dispatcher that validates arguments,
// invokes handlers, and translates failures into structured errors.
package tool
