package domain

import "errors"

var (
	ErrPatcherNotFound   = errors.New("patcher executable not found")
	ErrCatalogNotFound   = errors.New("patch catalog not found")
	ErrGameDirNotFound   = errors.New("game directory not found or empty")
	ErrReservedModActive = errors.New("reserved output mod is active")
	ErrNoEnabledPatches  = errors.New("no enabled patches in catalog")
	ErrPatchNotFound     = errors.New("patch not found in catalog")
)
