// Package matching holds the keyword tables and the scoring rules that rank
// catalog products for chat recommendations and visual search.
package matching

// Intent is the coarse kind of chat request.
type Intent string

const (
	IntentGreeting       Intent = "greeting"
	IntentProductSearch  Intent = "product_search"
	IntentPriceInquiry   Intent = "price_inquiry"
	IntentProductInfo    Intent = "product_info"
	IntentComparison     Intent = "comparison"
	IntentCategoryBrowse Intent = "category_browse"
	IntentHelp           Intent = "help"
	IntentGeneral        Intent = "general"
)

// IntentTriggers maps an intent to the phrases that select it. Phrases hit
// anywhere in the message; Words only hit as whole words.
type IntentTriggers struct {
	Intent  Intent
	Phrases []string
	Words   []string
}

// IntentTable is evaluated in order; the first intent with a hit wins.
// The price words are the bounds of the price patterns so a bare
// "under 80000" is treated as a price question.
var IntentTable = []IntentTriggers{
	{Intent: IntentGreeting, Phrases: []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}},
	{Intent: IntentProductSearch, Phrases: []string{"find", "search", "looking for", "need", "want", "show me", "recommend"}},
	{Intent: IntentPriceInquiry, Phrases: []string{"price", "cost", "how much", "expensive", "cheap", "budget"}, Words: []string{"under", "above", "between", "around"}},
	{Intent: IntentProductInfo, Phrases: []string{"what is", "tell me about", "information", "details", "specifications"}},
	{Intent: IntentComparison, Phrases: []string{"compare", "difference", "better", "vs", "versus", "which is better"}},
	{Intent: IntentCategoryBrowse, Phrases: []string{"category", "type", "kind", "laptops", "phones", "headphones"}},
	{Intent: IntentHelp, Phrases: []string{"help", "support", "assistance", "how to", "guide"}},
}

// ChatCategoryKeywords are the category mentions extracted from chat messages.
var ChatCategoryKeywords = []string{"laptop", "phone", "headphone", "tablet", "camera", "watch", "speaker", "tv", "monitor"}

// FeatureRule derives a feature tag from description terms.
type FeatureRule struct {
	Feature string
	Terms   []string
}

// FeatureRules tag knowledge base entries from product descriptions.
var FeatureRules = []FeatureRule{
	{Feature: "wireless", Terms: []string{"wireless", "bluetooth"}},
	{Feature: "waterproof", Terms: []string{"waterproof", "water resistant"}},
	{Feature: "rechargeable", Terms: []string{"battery", "rechargeable"}},
	{Feature: "gaming", Terms: []string{"gaming", "gamer"}},
	{Feature: "professional", Terms: []string{"professional", "pro"}},
	{Feature: "budget-friendly", Terms: []string{"budget", "affordable"}},
}

// ChatSuggestions are the fixed prompts offered to chat users.
var ChatSuggestions = []string{
	"Show me laptops under ₹50,000",
	"What are the best headphones?",
	"Find gaming products",
	"Compare smartphones",
	"Show me products in electronics category",
	"What's trending?",
	"Help me find a gift",
	"Show me deals and offers",
}

// VisualSuggestions are the fixed hints shown on the visual search page.
var VisualSuggestions = []string{
	"📱 Upload a smartphone photo to find similar phones",
	"💻 Take a picture of a laptop to find matching laptops",
	"👕 Snap a clothing item to find similar styles",
	"🎧 Upload headphone images to find matching audio gear",
	"⌚ Take a watch photo to find similar timepieces",
	"📷 Upload camera images to find matching photography gear",
	"🏃‍♂️ Snap sports equipment to find similar athletic gear",
	"🎮 Upload gaming accessories to find matching gaming products",
}

// VisualBrands are scanned in order against upload filenames; the first hit wins.
var VisualBrands = []string{
	"apple", "samsung", "sony", "nike", "adidas", "microsoft", "dell", "hp", "hewlett",
	"lenovo", "asus", "xiaomi", "oneplus", "oppo", "vivo", "realme", "motorola", "lg",
	"huawei", "acer", "msi", "razer", "alienware", "macbook", "iphone", "ipad",
}

// BrandAliases normalize product-line names to their brand.
var BrandAliases = map[string]string{
	"macbook": "apple",
	"iphone":  "apple",
	"ipad":    "apple",
	"hewlett": "hp",
}

// CategoryKeywords links a catalog category to the words that suggest it.
type CategoryKeywords struct {
	Category string
	Keywords []string
}

// FilenameCategories are scanned in order against upload filenames.
var FilenameCategories = []CategoryKeywords{
	{Category: "Smartphones", Keywords: []string{"smartphone", "phone", "mobile", "iphone"}},
	{Category: "Laptops", Keywords: []string{"laptop", "notebook", "pc", "computer", "macbook"}},
	{Category: "Accessories", Keywords: []string{
		"mouse", "keyboard", "mousepad", "mouse pad", "gaming mouse", "gaming keyboard",
		"headphone", "earbud", "earphone", "watch", "smartwatch", "speaker", "charger",
		"cable", "monitor", "webcam", "microphone", "usb", "hub",
	}},
	{Category: "Electronics", Keywords: []string{"camera", "tablet", "ipad"}},
}

// InferenceHints drive category inference from product text when nothing was detected.
var InferenceHints = []CategoryKeywords{
	{Category: "Smartphones", Keywords: []string{"iphone", "samsung galaxy", "oneplus", "xiaomi", "phone", "mobile", "smartphone", "oppo", "vivo", "realme", "pixel"}},
	{Category: "Laptops", Keywords: []string{"laptop", "macbook", "notebook", "dell", "hp pavilion", "lenovo thinkpad", "asus rog", "acer", "msi", "gaming laptop"}},
	{Category: "Accessories", Keywords: []string{"mouse", "keyboard", "headphone", "earbud", "earphone", "charger", "speaker", "webcam", "microphone", "monitor", "gaming mouse", "wireless mouse"}},
	{Category: "Electronics", Keywords: []string{"camera", "tablet", "ipad", "tv", "television", "watch", "smartwatch", "fitness tracker"}},
}

// CategoryPopularity weighs categories when no category was detected.
var CategoryPopularity = map[string]float64{
	"electronics": 0.9,
	"smartphones": 0.95,
	"laptops":     0.9,
	"accessories": 0.8,
	"clothing":    0.7,
	"shoes":       0.7,
	"books":       0.6,
	"home":        0.8,
	"sports":      0.7,
	"beauty":      0.8,
}

const defaultCategoryPopularity = 0.5

// PopularBrands get a higher weight when no brand was detected.
var PopularBrands = map[string]bool{
	"apple": true, "samsung": true, "sony": true, "nike": true, "adidas": true,
	"microsoft": true, "dell": true, "hp": true, "lenovo": true, "asus": true,
}

// BrandDefaultCategory is the category a brand is best known for.
var BrandDefaultCategory = map[string]string{
	"apple":    "Smartphones",
	"samsung":  "Smartphones",
	"xiaomi":   "Smartphones",
	"oneplus":  "Smartphones",
	"oppo":     "Smartphones",
	"vivo":     "Smartphones",
	"hp":       "Laptops",
	"dell":     "Laptops",
	"lenovo":   "Laptops",
	"asus":     "Laptops",
	"acer":     "Laptops",
	"razer":    "Accessories",
	"logitech": "Accessories",
}

// Coarse product types guessed from an upload.
const (
	TypeElectronics = "electronics"
	TypeAccessories = "accessories"
	TypeClothing    = "clothing"
	TypeGeneral     = "general"
)

// TypeCategories lists the categories a coarse product type is plausible for.
var TypeCategories = map[string][]string{
	TypeElectronics: {"Electronics", "Smartphones", "Laptops"},
	TypeClothing:    {"Clothing", "Shoes"},
	TypeAccessories: {"Accessories", "Electronics"},
}

// StorefrontCategory maps a storefront navigation category onto catalog categories.
// Keywords, when set, further restrict results by name or description.
type StorefrontCategory struct {
	Categories []string
	Keywords   []string
}

// StorefrontCategories backs the search box's category shortcuts, keyed by
// the exact navigation label.
var StorefrontCategories = map[string]StorefrontCategory{
	"Smartphones": {Categories: []string{"Mobiles", "Mobile", "Smartphones", "Smartphone", "Phone"}},
	"Laptops":     {Categories: []string{"Laptops", "Laptop", "Computer", "Notebook"}},
	"Accessories": {Categories: []string{"Accessories", "Accessory"}},
	"Headphones": {Categories: []string{"Electronics"}, Keywords: []string{
		"headphone", "earphone", "earbud", "airpod", "headset", "wh-1000xm", "wireless headphone", "noise cancelling",
	}},
	"Cameras": {Categories: []string{"Electronics"}, Keywords: []string{
		"camera", "dslr", "mirrorless", "photography", "lens", "zoom", "digital camera", "photo",
	}},
	"Gaming": {Categories: []string{"Electronics"}, Keywords: []string{
		"gaming", "game", "console", "playstation", "xbox", "nintendo", "controller", "gaming laptop",
	}},
}

// SearchSynonym expands a search keyword containing Key.
type SearchSynonym struct {
	Key      string
	Synonyms []string
}

// SearchSynonyms are applied in order; every key contained in the keyword contributes.
var SearchSynonyms = []SearchSynonym{
	{Key: "phone", Synonyms: []string{"smartphones", "mobile", "mobile phone", "cell phone"}},
	{Key: "laptop", Synonyms: []string{"laptops", "computer", "notebook", "pc"}},
	{Key: "headphone", Synonyms: []string{"headphones", "earphones", "earbuds", "airpods"}},
	{Key: "tablet", Synonyms: []string{"tablets", "ipad", "android tablet"}},
	{Key: "camera", Synonyms: []string{"cameras", "dslr", "mirrorless", "digital camera"}},
	{Key: "watch", Synonyms: []string{"watches", "smartwatch", "apple watch", "samsung watch"}},
	{Key: "speaker", Synonyms: []string{"speakers", "bluetooth speaker", "wireless speaker"}},
	{Key: "gaming", Synonyms: []string{"gaming laptop", "gaming pc", "gaming console", "playstation", "xbox"}},
	{Key: "tv", Synonyms: []string{"television", "smart tv", "led tv", "oled tv"}},
	{Key: "monitor", Synonyms: []string{"monitors", "display", "screen", "computer monitor"}},
	{Key: "accessory", Synonyms: []string{"accessories", "gadgets", "peripherals"}},
}
