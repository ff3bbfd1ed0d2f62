package generator

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/toyz/locations/internal/models"
	"github.com/toyz/locations/internal/parser"
	"github.com/toyz/locations/internal/utils"
)

const shopSource = `package shop

import (
	"time"

	ids "github.com/google/uuid"
)

//locations::location /api
type Api struct{}

//locations::location /orders/{id} -parent=Api -name=orders.show
type Order struct {
	ID int
	//locations::query q
	Term    string
	Since   *time.Duration
	Owner   ids.UUID //locations::path owner
	//locations::nested
	Page Paging
}

//locations::location /page -lazy -sources=query,form
type Paging struct {
	Limit int
}

//locations::location /checkout -body
type Checkout struct {
	//locations::post
	Coupon string
}
`

func generateShop(t *testing.T) *models.GeneratedFile {
	t.Helper()
	metadata, err := parser.NewParser().ParseSource("shop.go", shopSource)
	require.NoError(t, err)

	file, err := NewGenerator().GenerateFile(metadata)
	require.NoError(t, err)
	return file
}

func TestGenerateFile_Header(t *testing.T) {
	file := generateShop(t)

	assert.Equal(t, "shop", file.PackageName)
	assert.Equal(t, filepath.Join("./", parser.GeneratedFileName), file.FilePath)
	assert.Equal(t, []string{"ApiLocation", "OrderLocation", "PagingLocation", "CheckoutLocation"}, file.Locations)

	assert.True(t, strings.HasPrefix(file.Content, "// Code generated by locgen. DO NOT EDIT.\n\npackage shop\n"))
	assert.Contains(t, file.Content, `"github.com/toyz/locations/pkg/locations"`)
	assert.Contains(t, file.Content, `ids "github.com/google/uuid"`)
	assert.Contains(t, file.Content, `"time"`)
	assert.NoError(t, utils.ValidateGoCode(file.Content))
}

func TestGenerateFile_Descriptors(t *testing.T) {
	content := generateShop(t).Content

	expected := []string{
		`// ApiLocation binds Api to "/api".`,
		`var ApiLocation = locations.Define[Api]("/api")`,
		`var OrderLocation = locations.Define[Order]("/orders/{id}").`,
		`Within(ApiLocation).`,
		`Named("orders.show").`,
		`locations.Field("id", func(l *Order) *int { return &l.ID }),`,
		`locations.Field("term", func(l *Order) *string { return &l.Term }, locations.FromQuery("q")),`,
		`locations.Field("since", func(l *Order) **time.Duration { return &l.Since }),`,
		`locations.Field("owner", func(l *Order) *ids.UUID { return &l.Owner }, locations.FromPath("owner")),`,
		`locations.Nested("page", func(l *Order) *Paging { return &l.Page }, PagingLocation),`,
		`Eager(false).`,
		`Sources(locations.SourceQuery, locations.SourceForm).`,
		`BodyBound().`,
		`locations.Field("coupon", func(l *Checkout) *string { return &l.Coupon }, locations.FromBody("")),`,
	}
	for _, line := range expected {
		assert.Contains(t, content, line)
	}
}

func TestGenerateFile_Empty(t *testing.T) {
	file, err := NewGenerator().GenerateFile(&models.PackageMetadata{PackageName: "empty", PackagePath: "./empty"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("./empty", parser.GeneratedFileName), file.FilePath)
	assert.Empty(t, file.Content)
	assert.Empty(t, file.Locations)
}

func TestGenerateFile_NilMetadata(t *testing.T) {
	_, err := NewGenerator().GenerateFile(nil)
	assert.ErrorContains(t, err, "metadata cannot be nil")
}

func TestGenerateFile_InvalidMetadata(t *testing.T) {
	base := func() *models.PackageMetadata {
		return &models.PackageMetadata{
			PackageName: "bad",
			PackagePath: ".",
			Locations: []models.LocationMetadata{{
				TypeName: "A",
				VarName:  "ALocation",
				Fragment: "/a",
			}},
		}
	}

	metadata := base()
	metadata.Locations[0].Parent = "Missing"
	_, err := NewGenerator().GenerateFile(metadata)
	assert.ErrorContains(t, err, "unknown parent Missing")

	metadata = base()
	metadata.Locations[0].Sources = []string{"body"}
	_, err = NewGenerator().GenerateFile(metadata)
	assert.ErrorContains(t, err, `unknown source "body"`)

	metadata = base()
	metadata.Locations[0].Fields = []models.FieldMetadata{{Name: "b", GoName: "B", TypeExpr: "string", Bindings: []models.BindingMetadata{{Source: "cookie"}}}}
	_, err = NewGenerator().GenerateFile(metadata)
	assert.ErrorContains(t, err, `unknown source "cookie"`)

	metadata = base()
	metadata.Locations[0].Fields = []models.FieldMetadata{{Name: "n", GoName: "N", Nested: "Ghost"}}
	_, err = NewGenerator().GenerateFile(metadata)
	assert.ErrorContains(t, err, "nests unknown location Ghost")
}
