// Package textutil holds string sanitization helpers used when deriving
// output file names from user-supplied source paths.
package textutil
