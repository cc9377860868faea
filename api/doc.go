// Package api exposes typed lore API endpoints built on the client facade.
package api
