package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ochairo/forgedroid/internal/domain/entities"
	"github.com/ochairo/forgedroid/internal/domain/interfaces/repositories"
)

// PackageNamePrefix prefixes generated Android package identifiers
const PackageNamePrefix = "io.forgedroid.app"

// PackageNamer assigns each project a stable Android package identifier
type PackageNamer struct {
	newUUID func() string
}

// NewPackageNamer creates a package namer
func NewPackageNamer() *PackageNamer {
	return &PackageNamer{newUUID: func() string { return uuid.NewString() }}
}

// PackageName returns the stored identifier, generating and storing one on
// first use. An existing value is never overwritten.
func (n *PackageNamer) PackageName(store repositories.ConfigStore) string {
	if name, ok := store.Get(entities.KeyAndroidPackageName); ok && name != "" {
		return name
	}

	id, ok := store.Get(entities.KeyProjectUUID)
	if !ok || id == "" {
		id = n.newUUID()
		store.Set(entities.KeyProjectUUID, id)
	}

	name := PackageNamePrefix + strings.ToLower(strings.ReplaceAll(id, "-", ""))
	store.Set(entities.KeyAndroidPackageName, name)
	return name
}
