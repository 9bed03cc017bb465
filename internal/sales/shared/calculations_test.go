package shared

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-pos/internal/platform/httpx"
	"github.com/odyssey-erp/odyssey-pos/internal/pricing"
)

type stubCatalog map[int64]pricing.CatalogItem

func (s stubCatalog) CatalogItem(ctx context.Context, id int64) (pricing.CatalogItem, error) {
	item, ok := s[id]
	if !ok {
		return pricing.CatalogItem{}, httpx.ErrNotFound
	}
	return item, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func amt(s string) pricing.Amount { return pricing.NewAmount(dec(s)) }

var catalog = stubCatalog{
	1: {ProductID: 1, PresentationID: 1, Description: "Refresco", Presentation: pricing.Presentation{
		Price1: dec("59"), Price2: dec("55"), DiscountPct: dec("5"), TaxPct: dec("18"),
	}},
	2: {ProductID: 2, PresentationID: 2, Description: "Pan", Presentation: pricing.Presentation{
		Price1: dec("25"),
	}},
}

func TestBuildDraftPricesEveryLine(t *testing.T) {
	draft, err := BuildDraft(context.Background(), catalog, DraftRequest{
		Kind:      pricing.KindInvoice,
		Surcharge: dec("10"),
		Lines: []LineRequest{
			{PresentationID: 1, Quantity: amt("2")},
			{PresentationID: 2, Quantity: amt("4")},
		},
	}, nil)
	require.NoError(t, err)

	require.Len(t, draft.Lines, 2)
	assert.True(t, draft.Totals.GrandTotal.Equal(dec("228")), draft.Totals.GrandTotal.String())
	assert.True(t, draft.Lines[0].Tax.Equal(dec("18")))
	assert.True(t, draft.Lines[1].Tax.IsZero())
	assert.Empty(t, draft.Notices)
}

func TestBuildDraftCapsDiscountAndReportsIt(t *testing.T) {
	draft, err := BuildDraft(context.Background(), catalog, DraftRequest{
		Kind:  pricing.KindQuotation,
		Lines: []LineRequest{{PresentationID: 1, Quantity: amt("1"), DiscountPct: amt("20")}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, draft.Notices, 1)
	assert.True(t, draft.Document.Lines[0].DiscountPct.Equal(dec("5")))
	require.Len(t, draft.Messages(), 1)
}

func TestBuildDraftUsesClientTierAndOverride(t *testing.T) {
	client := pricing.ClientRef{ID: 9, Tier: pricing.TierTwo, Credit: pricing.CreditTerms{Authorized: true, Days: 15}}
	override := amt("50")
	draft, err := BuildDraft(context.Background(), catalog, DraftRequest{
		Kind:   pricing.KindInvoice,
		Client: &client,
		Lines: []LineRequest{
			{PresentationID: 1, Quantity: amt("1")},
			{PresentationID: 1, Quantity: amt("1"), UnitPrice: &override},
		},
	}, nil)
	require.NoError(t, err)
	assert.True(t, draft.Document.Lines[0].UnitPrice.Equal(dec("55")))
	assert.True(t, draft.Document.Lines[1].UnitPrice.Equal(dec("50")))
	assert.Equal(t, pricing.PaymentCredit, draft.Document.PaymentType)
	assert.Equal(t, 15, draft.Document.CreditDays)
}

func TestBuildDraftErrors(t *testing.T) {
	ctx := context.Background()

	_, err := BuildDraft(ctx, catalog, DraftRequest{Kind: pricing.KindInvoice}, nil)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = BuildDraft(ctx, catalog, DraftRequest{
		Kind:  pricing.KindInvoice,
		Lines: []LineRequest{{PresentationID: 1, Quantity: amt("0")}},
	}, nil)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = BuildDraft(ctx, catalog, DraftRequest{
		Kind:  pricing.KindInvoice,
		Lines: []LineRequest{{PresentationID: 77, Quantity: amt("1")}},
	}, nil)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
