package shopify

// BulkOperationRunQueryMutation starts a bulk export; $query is BulkProductsQuery
const BulkOperationRunQueryMutation = `
mutation bulkOperationRunQuery($query: String!) {
  bulkOperationRunQuery(query: $query) {
    bulkOperation {
      id
      status
    }
    userErrors {
      field
      message
    }
  }
}
`

// DraftOrderCreateMutation creates a draft order
const DraftOrderCreateMutation = `
mutation draftOrderCreate($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder {
      id
      name
    }
    userErrors {
      field
      message
    }
  }
}
`

// DraftOrderInput represents the input for creating a draft order
type DraftOrderInput struct {
	LineItems        []DraftOrderLineItemInput `json:"lineItems"`
	PurchasingEntity *PurchasingEntityInput    `json:"purchasingEntity,omitempty"`
	Note             *string                   `json:"note,omitempty"`
	PoNumber         *string                   `json:"poNumber,omitempty"`
	ShippingLine     *ShippingLineInput        `json:"shippingLine,omitempty"`
	Tags             []string                  `json:"tags,omitempty"`
}

type DraftOrderLineItemInput struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// PurchasingEntityInput attaches the draft order to a customer
type PurchasingEntityInput struct {
	CustomerID string `json:"customerId"`
}

// ShippingLineInput is a custom shipping line; Price is a decimal string
type ShippingLineInput struct {
	Title string `json:"title"`
	Price string `json:"price"`
}
