package extract

import "dealradar/models"

// Selector is one candidate extraction rule: a CSS query plus the
// attribute to read (empty means element text).
type Selector struct {
	Query string
	Attr  string
}

// FieldSelectors holds the per-field selector cascades for one store,
// ordered most-specific/most-reliable first. The generic extractor walks
// each list and keeps the first value that passes the field's
// plausibility check.
type FieldSelectors struct {
	Name          []Selector
	Price         []Selector
	OriginalPrice []Selector
	Image         []Selector
	Description   []Selector
}

// storeSelectors is the single data-driven table replacing per-store
// extraction functions. Retail sites ship multiple page generations at
// once, so each cascade carries both current and legacy markup.
var storeSelectors = map[models.StoreTag]FieldSelectors{
	models.StoreAmazon: {
		Name: []Selector{
			{Query: "#productTitle"},
			{Query: "#title"},
			{Query: "h1.product-title-word-break"},
		},
		Price: []Selector{
			{Query: ".priceToPay .a-offscreen"},
			{Query: "#corePriceDisplay_desktop_feature_div .a-price.apexPriceToPay .a-offscreen"},
			{Query: ".a-price.a-text-price.a-size-medium.apexPriceToPay .a-offscreen"},
			{Query: "#priceblock_dealprice"},
			{Query: "#priceblock_ourprice"},
			{Query: ".a-price .a-offscreen"},
			{Query: ".a-offscreen"},
			{Query: ".a-price-whole"},
		},
		OriginalPrice: []Selector{
			{Query: ".basisPrice .a-offscreen"},
			{Query: "span[data-a-strike='true'] .a-offscreen"},
			{Query: ".a-text-price .a-offscreen"},
			{Query: "#priceblock_listprice"},
		},
		Image: []Selector{
			{Query: "#landingImage", Attr: "data-old-hires"},
			{Query: "#landingImage", Attr: "src"},
			{Query: "#imgBlkFront", Attr: "src"},
			{Query: "#main-image-container img", Attr: "src"},
		},
		Description: []Selector{
			{Query: "#feature-bullets .a-list-item"},
			{Query: "#productDescription"},
		},
	},
	models.StoreWalmart: {
		Name: []Selector{
			{Query: "h1[itemprop='name']"},
			{Query: "h1#main-title"},
			{Query: "h1.prod-ProductTitle"},
		},
		Price: []Selector{
			{Query: "span[itemprop='price']"},
			{Query: "[data-testid='price-wrap'] span.w_iUH7"},
			{Query: "span.price-characteristic", Attr: "content"},
			{Query: ".price-group"},
		},
		OriginalPrice: []Selector{
			{Query: "[data-testid='strikethrough-price']"},
			{Query: "span.price-old .price-characteristic", Attr: "content"},
			{Query: ".was-price"},
		},
		Image: []Selector{
			{Query: "img[data-testid='hero-image']", Attr: "src"},
			{Query: ".prod-hero-image img", Attr: "src"},
		},
		Description: []Selector{
			{Query: "[data-testid='product-description'] span"},
			{Query: ".about-desc"},
		},
	},
	models.StoreTarget: {
		Name: []Selector{
			{Query: "h1[data-test='product-title']"},
			{Query: "h1 span[data-test='product-title']"},
			{Query: "h1"},
		},
		Price: []Selector{
			{Query: "span[data-test='product-price']"},
			{Query: "[data-test='product-price']"},
		},
		OriginalPrice: []Selector{
			{Query: "span[data-test='product-regular-price']"},
			{Query: "[data-test='product-comparison-price']"},
		},
		Image: []Selector{
			{Query: "[data-test='image-gallery-item-0'] img", Attr: "src"},
			{Query: "picture img", Attr: "src"},
		},
		Description: []Selector{
			{Query: "[data-test='item-details-description']"},
		},
	},
	models.StoreHomeDepot: {
		Name: []Selector{
			{Query: "h1.product-details__title"},
			{Query: "h1[class*='product-details']"},
			{Query: "h1.page-title"},
		},
		Price: []Selector{
			{Query: "[data-testid='price-simple']"},
			{Query: ".price-format__large"},
			{Query: "#standard-price .price"},
			{Query: ".price"},
		},
		OriginalPrice: []Selector{
			{Query: ".price-detailed__was-price"},
			{Query: ".u__strike"},
		},
		Image: []Selector{
			{Query: "#mainImage", Attr: "src"},
			{Query: ".mediagallery__mainimage img", Attr: "src"},
		},
		Description: []Selector{
			{Query: ".product-details__description"},
			{Query: "#product-overview"},
		},
	},
	models.StoreEbay: {
		Name: []Selector{
			{Query: "h1.x-item-title__mainTitle span.ux-textspans--BOLD"},
			{Query: "h1.x-item-title__mainTitle"},
			{Query: "#itemTitle"},
			{Query: "h1.it-ttl"},
		},
		Price: []Selector{
			{Query: ".x-price-primary .ux-textspans"},
			{Query: "#prcIsum"},
			{Query: "#mm-saleDscPrc"},
		},
		OriginalPrice: []Selector{
			{Query: ".x-additional-info__textual-display .ux-textspans--STRIKETHROUGH"},
			{Query: "#orgPrc"},
		},
		Image: []Selector{
			{Query: ".ux-image-carousel-item.active img", Attr: "src"},
			{Query: "#icImg", Attr: "src"},
		},
		Description: []Selector{
			{Query: "#viTabs_0_is"},
			{Query: ".x-about-this-item"},
		},
	},
}

// genericSelectors is the meta-tag tier applied when the store-specific
// cascade (or the unknown store) produced nothing for a field.
var genericSelectors = FieldSelectors{
	Name: []Selector{
		{Query: "meta[property='og:title']", Attr: "content"},
		{Query: "meta[name='twitter:title']", Attr: "content"},
		{Query: "h1"},
		{Query: "title"},
	},
	Price: []Selector{
		{Query: "meta[property='product:price:amount']", Attr: "content"},
		{Query: "meta[property='og:price:amount']", Attr: "content"},
		{Query: "[itemprop='price']", Attr: "content"},
		{Query: "[itemprop='price']"},
		{Query: ".price"},
	},
	OriginalPrice: []Selector{
		{Query: "[itemprop='highPrice']", Attr: "content"},
		{Query: "s.price, del.price, .price s, .price del"},
	},
	Image: []Selector{
		{Query: "meta[property='og:image']", Attr: "content"},
		{Query: "meta[name='twitter:image']", Attr: "content"},
		{Query: "link[rel='image_src']", Attr: "href"},
	},
	Description: []Selector{
		{Query: "meta[property='og:description']", Attr: "content"},
		{Query: "meta[name='description']", Attr: "content"},
	},
}
