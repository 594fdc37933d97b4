package extractors

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aakashv8900/commercesignal/internal/app/domain/commerce"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		raw   string
		want  float64
		wantOK bool
	}{
		{"$1,299.00", 1299.00, true},
		{"₹1,49,900", 149900, true},
		{"Currently unavailable", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, ok := parsePrice(c.raw)
		require.Equal(t, c.wantOK, ok, c.raw)
		if ok {
			require.InDelta(t, c.want, got, 0.01, c.raw)
		}
	}
}

func TestDedup(t *testing.T) {
	in := []string{"a", "b", "a", "c", "b"}
	require.Equal(t, []string{"a", "b", "c"}, dedup(in))
}

func TestCapDiscovery(t *testing.T) {
	in := make([]string, 150)
	for i := range in {
		in[i] = "u"
	}
	require.Len(t, capDiscovery(in), maxDiscoveryURLs)
}

func TestAmazon_ExtractIDAndDetect(t *testing.T) {
	a := NewAmazon(nil)
	require.Equal(t, commerce.PlatformAmazon, a.Platform())

	id, ok := a.ExtractID("https://www.amazon.com/Widget/dp/B07XJ8C8F5/ref=sr_1_1")
	require.True(t, ok)
	require.Equal(t, "B07XJ8C8F5", id)

	require.True(t, a.Detect("https://www.amazon.com/gp/product/B07XJ8C8F5"))
	require.False(t, a.Detect("https://www.amazon.com/gp/bestsellers/electronics"))
	require.False(t, a.Detect("https://www.flipkart.com/p/itm123"))
}

func TestFlipkart_ExtractIDPrefersPidOverSlug(t *testing.T) {
	f := NewFlipkart(nil)
	require.Equal(t, commerce.PlatformFlipkart, f.Platform())

	id, ok := f.ExtractID("https://www.flipkart.com/widget/p/itmabc123?pid=MOBFXYZ")
	require.True(t, ok)
	require.Equal(t, "MOBFXYZ", id)

	id, ok = f.ExtractID("https://www.flipkart.com/widget/p/itm-handle-xyz")
	require.True(t, ok)
	require.Equal(t, "itm-handle-xyz", id)

	require.False(t, f.Detect("https://www.amazon.com/dp/B07XJ8C8F5"))
}

func TestEbay_ExtractIDTriesEveryPattern(t *testing.T) {
	e := NewEbay(nil)
	require.Equal(t, commerce.PlatformEbay, e.Platform())

	id, ok := e.ExtractID("https://www.ebay.com/itm/123456789012")
	require.True(t, ok)
	require.Equal(t, "123456789012", id)

	require.True(t, e.Detect("https://www.ebay.com/itm/some-widget/123456789012"))
	require.False(t, e.Detect("https://www.ebay.com/sch/i.html?_nkw=widget"))
}

func TestWalmart_ExtractIDAndDetect(t *testing.T) {
	w := NewWalmart(nil)
	require.Equal(t, commerce.PlatformWalmart, w.Platform())

	id, ok := w.ExtractID("https://www.walmart.com/ip/Widget/123456789")
	require.True(t, ok)
	require.Equal(t, "123456789", id)

	require.True(t, w.Detect("https://www.walmart.com/ip/Widget/123456789"))
	require.False(t, w.Detect("https://www.walmart.com/browse/electronics"))
}

func TestAlibaba_PlatformForDistinguishesAliexpress(t *testing.T) {
	require.Equal(t, commerce.PlatformAliExpress, PlatformFor("https://www.aliexpress.com/item/1005001234567890.html"))
	require.Equal(t, commerce.PlatformAlibaba, PlatformFor("https://www.alibaba.com/product-detail/widget_1234567890.html"))

	a := NewAlibaba(nil)
	id, ok := a.ExtractID("https://www.aliexpress.com/item/1005001234567890.html")
	require.True(t, ok)
	require.Equal(t, "1005001234567890", id)
	require.True(t, a.Detect("https://www.aliexpress.com/item/1005001234567890.html"))
	require.False(t, a.Detect("https://www.walmart.com/ip/Widget/123456789"))
}

func TestShopify_ExtractIDFromProductsPath(t *testing.T) {
	s := NewShopify(nil)
	require.Equal(t, commerce.PlatformShopify, s.Platform())

	id, ok := s.ExtractID("https://my-store.myshopify.com/products/cozy-widget?variant=1")
	require.True(t, ok)
	require.Equal(t, "cozy-widget", id)
	require.True(t, s.Detect("https://my-store.myshopify.com/products/cozy-widget"))
	require.False(t, s.Detect("https://my-store.myshopify.com/collections/all"))
}

func TestDispatcher_ForResolvesByPlatform(t *testing.T) {
	amazon := NewAmazon(nil)
	flipkart := NewFlipkart(nil)
	ebay := NewEbay(nil)
	d := NewDispatcher(amazon, flipkart, ebay)

	got, ok := d.For("https://www.flipkart.com/widget/p/itmabc123?pid=MOBFXYZ")
	require.True(t, ok)
	require.Equal(t, commerce.PlatformFlipkart, got.Platform())

	_, ok = d.For("https://example.com/not-a-product")
	require.False(t, ok)
}
