package ai

// Source marks whether a result came from the model or from the
// deterministic estimator. Callers get a usable value either way.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

type Condition string

const (
	ConditionNew     Condition = "New"
	ConditionLikeNew Condition = "Like New"
	ConditionGood    Condition = "Good"
	ConditionFair    Condition = "Fair"
)

type RewriteStyle string

const (
	StyleProfessional RewriteStyle = "professional"
	StyleCasual       RewriteStyle = "casual"
	StyleShorter      RewriteStyle = "shorter"
)

// ScoreRequest asks how favorable a listing price is against an estimated
// market price. MarketPrice must be positive; the HTTP boundary rejects
// anything else before the gateway runs.
type ScoreRequest struct {
	Price            int       `json:"price"`
	MarketPrice      int       `json:"marketPrice"`
	Category         string    `json:"category"`
	Condition        Condition `json:"condition"`
	SellerReputation *int      `json:"sellerReputation,omitempty"`
}

type ScoreResult struct {
	DealScore int      `json:"dealScore"`
	RiskScore int      `json:"riskScore"`
	Reasons   []string `json:"reasons"`
	Source    Source   `json:"source"`
}

type PriceSuggestionRequest struct {
	Title         string         `json:"title"`
	Category      string         `json:"category"`
	Condition     Condition      `json:"condition"`
	Specs         map[string]any `json:"specs,omitempty"`
	OriginalPrice int            `json:"originalPrice,omitempty"`
}

// PriceSuggestionResult always satisfies Min <= Recommended <= Max.
// The fallback guarantees it by construction; the AI path is checked
// after parsing and falls back on violation.
type PriceSuggestionResult struct {
	Min         int    `json:"min"`
	Max         int    `json:"max"`
	Recommended int    `json:"recommended"`
	Source      Source `json:"source"`
}

type DescriptionRequest struct {
	Title     string         `json:"title"`
	Category  string         `json:"category"`
	Condition Condition      `json:"condition,omitempty"`
	Specs     map[string]any `json:"specs,omitempty"`
}

type DescriptionResult struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ReplyDraftRequest struct {
	Message             string     `json:"message"`
	ConversationHistory []ChatTurn `json:"conversationHistory,omitempty"`
	ListingContext      string     `json:"listingContext,omitempty"`
}

type ReplyDraftResult struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}
