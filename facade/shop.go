package facade

import (
	"context"
	"math/big"

	"github.com/aqua-stark/world-binding/binding/api"
	"github.com/aqua-stark/world-binding/codec"
)

// TargetShopCatalog is the world contract owning the shop catalog.
var TargetShopCatalog = api.NewTarget("ShopCatalog")

var (
	methodShopAddNewItem = TargetShopCatalog.NewMethod("add_new_item", api.Mutation,
		api.P("price", amountShape),
		api.P("stock", idShape),
		api.P("description", codec.ByteArrayShape),
	)
	methodShopUpdateItem = TargetShopCatalog.NewMethod("update_item", api.Mutation,
		api.P("id", idShape),
		api.P("price", amountShape),
		api.P("stock", idShape),
		api.P("description", codec.ByteArrayShape),
	)
	methodShopGetItem     = TargetShopCatalog.NewMethod("get_item", api.View, api.P("id", idShape))
	methodShopGetAllItems = TargetShopCatalog.NewMethod("get_all_items", api.View)
)

// BuildShopAddNewItem builds an add_new_item call.
func BuildShopAddNewItem(price *big.Int, stock uint64, description string) (*api.Descriptor, error) {
	p, err := amount(price)
	if err != nil {
		return nil, err
	}
	return methodShopAddNewItem.Build(p, id(stock), codec.EncodeByteArray(description))
}

// BuildShopUpdateItem builds an update_item call.
func BuildShopUpdateItem(itemID uint64, price *big.Int, stock uint64, description string) (*api.Descriptor, error) {
	p, err := amount(price)
	if err != nil {
		return nil, err
	}
	return methodShopUpdateItem.Build(id(itemID), p, id(stock), codec.EncodeByteArray(description))
}

// BuildShopGetItem builds a get_item call.
func BuildShopGetItem(itemID uint64) (*api.Descriptor, error) {
	return methodShopGetItem.Build(id(itemID))
}

// BuildShopGetAllItems builds a get_all_items call.
func BuildShopGetAllItems() (*api.Descriptor, error) {
	return methodShopGetAllItems.Build()
}

// Shop is the shop catalog façade.
type Shop struct {
	backend *Backend
}

// NewShop creates a new shop façade.
func NewShop(backend *Backend) *Shop {
	return &Shop{backend: backend}
}

// AddNewItem adds an item to the catalog.
func (s *Shop) AddNewItem(ctx context.Context, signer api.Signer, price *big.Int, stock uint64, description string) (*api.TransactionHandle, error) {
	return s.backend.mutate(ctx, signer, methodShopAddNewItem, func() (*api.Descriptor, error) {
		return BuildShopAddNewItem(price, stock, description)
	})
}

// UpdateItem updates a catalog item.
func (s *Shop) UpdateItem(ctx context.Context, signer api.Signer, itemID uint64, price *big.Int, stock uint64, description string) (*api.TransactionHandle, error) {
	return s.backend.mutate(ctx, signer, methodShopUpdateItem, func() (*api.Descriptor, error) {
		return BuildShopUpdateItem(itemID, price, stock, description)
	})
}

// GetItem returns a catalog item.
func (s *Shop) GetItem(ctx context.Context, itemID uint64) (api.ResultSet, error) {
	return s.backend.query(ctx, methodShopGetItem, func() (*api.Descriptor, error) {
		return BuildShopGetItem(itemID)
	})
}

// GetAllItems returns the whole catalog.
func (s *Shop) GetAllItems(ctx context.Context) (api.ResultSet, error) {
	return s.backend.query(ctx, methodShopGetAllItems, BuildShopGetAllItems)
}
