// Package postprocessors holds the stages that run on extracted pages
// before embedding. Each subpackage implements a driven port.
package postprocessors
