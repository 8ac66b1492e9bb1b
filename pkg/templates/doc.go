// Package templates discovers template folders and hosts their setup
// scripts.
//
// Every immediate subdirectory of a templates root is a template. Its
// optional .pig.js runs once in the template's own sandbox, where a pig
// object already holds the defaults:
//
//	pig.name               sentence-cased folder name
//	pig.detail             null
//	pig.description        null
//	pig.executeAsync       (paths) => ({})
//	pig.getDestinationPath (entry, context, paths) => entry.sourcePath
//	pig.transformContext   (context) => context
//	pig.shouldOpenDocument (entry, context, paths) => true
//
// A template whose script throws is reported through the host and left out
// of the results; the other templates are unaffected.
package templates
