package service

// ItemListRequest is the JSON body of a typed item-list submission.
// LineItems and Quantity are parallel columns.
type ItemListRequest struct {
	CustomerName string   `json:"customer_name" binding:"required"`
	PONumber     string   `json:"po_number" binding:"required"`
	LineItems    []string `json:"line_items" binding:"required,min=1"`
	Quantity     []string `json:"quantity" binding:"required,min=1"`
}

// PDFSubmitForm is the multipart form of a PDF submission; the file travels as pdfFile
type PDFSubmitForm struct {
	CustomerName string `form:"customerName"`
	PONumber     string `form:"poNumber"`
}
