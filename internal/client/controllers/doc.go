// Package controllers holds the presentation controllers of the client. Each
// controller exposes observable state as live.State cells and turns user
// actions into repository calls. Work is launched in a scope owned by the
// controller; Close cancels it.
package controllers
