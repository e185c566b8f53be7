package shopify

// ShopNameQuery fetches the shop name, used as the catalog partition key
const ShopNameQuery = `
query getShopName {
  shop {
    name
  }
}
`

// ProductVariantByIDQuery fetches live variant data for a cached catalog entry
const ProductVariantByIDQuery = `
query getProductVariant($id: ID!) {
  productVariant(id: $id) {
    id
    title
    price
    sku
    inventoryQuantity
    inventoryPolicy
    inventoryManagement
    weight
    weightUnit
    availableForSale
    barcode
  }
}
`

// CustomersByNameQuery finds customers matching a search string (e.g. "Acme Supplies")
const CustomersByNameQuery = `
query getCustomersByName($query: String!) {
  customers(first: 1, query: $query) {
    edges {
      node {
        id
        displayName
      }
    }
  }
}
`

// BulkOperationStatusQuery polls a bulk operation by its GID
const BulkOperationStatusQuery = `
query getBulkOperation($id: ID!) {
  node(id: $id) {
    ... on BulkOperation {
      id
      status
      errorCode
      createdAt
      completedAt
      objectCount
      fileSize
      url
      partialDataUrl
    }
  }
}
`

// BulkProductsQuery is the export document handed to bulkOperationRunQuery.
// Variant lines in the result carry a price; product lines do not.
const BulkProductsQuery = `
{
  products {
    edges {
      node {
        id
        title
        variants(first: 10) {
          edges {
            node {
              id
              title
              price
              sku
              inventoryQuantity
              inventoryPolicy
              inventoryManagement
              weight
              weightUnit
              availableForSale
              barcode
            }
          }
        }
      }
    }
  }
}
`
