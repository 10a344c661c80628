package service

import "errors"

// Domain errors surfaced to handlers; anything else coming out of a service
// is treated as a store failure and reported as a generic 500.
var (
	ErrClienteNoEncontrado = errors.New("cliente no encontrado")
	ErrTelefonoRegistrado  = errors.New("ese telefono ya esta registrado")
	ErrUsuarioNoEncontrado = errors.New("usuario no encontrado o inactivo")
)
