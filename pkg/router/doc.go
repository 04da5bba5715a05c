// Package router implements a declarative, URL-driven navigation engine.
//
// A Router owns an author-supplied configuration tree of routes and turns
// URL text into a committed state tree in distinct stages: the URL is parsed
// into a structured tree (package urltree), RedirectTo substitutions rewrite
// it level by level, the recognizer matches it depth-first in declaration
// order against the configuration, the result is diffed against the
// committed state, guards and resolvers run against the diff, and finally
// the new state commits and the rendering collaborator receives activate,
// deactivate and update instructions per outlet.
//
// At most one navigation is current at a time. Starting a new navigation
// cancels the context of the one in flight, and a superseded navigation can
// no longer commit. Failed navigations leave the committed state and the
// location untouched.
package router
