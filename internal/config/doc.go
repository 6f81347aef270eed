// Package config loads the JSON settings of the xyz tool. Fields are
// pointers so a partial file only overrides what it names; the Get*
// accessors supply defaults for the rest.
package config
