// Package catalogs defines the canonical product vocabulary shared by every
// supplier: the fixed set of canonical fields, the kind each field carries,
// and the typed values and records built from them.
//
// A Record is a value object. Functions in this module never mutate a
// Record they receive; they return a new one.
package catalogs

import "sort"

// Field is a canonical product field name.
type Field string

// String returns the field name.
func (f Field) String() string {
	return string(f)
}

// Kind is the canonical type of a field.
type Kind int

// Field kinds.
const (
	KindText Kind = iota
	KindInteger
	KindDecimal
	KindBoolean
	KindDate
	KindDateTime
)

var kindNames = map[Kind]string{
	KindText:     "text",
	KindInteger:  "integer",
	KindDecimal:  "decimal",
	KindBoolean:  "boolean",
	KindDate:     "date",
	KindDateTime: "datetime",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Identifier fields.
const (
	FieldSupplierCode       Field = "supplier_code"
	FieldSKU                Field = "sku"
	FieldBrandSKU           Field = "brand_sku"
	FieldBarcode            Field = "barcode"
	FieldEAN                Field = "ean"
	FieldUPC                Field = "upc"
	FieldASIN               Field = "asin"
	FieldISBN               Field = "isbn"
	FieldSupplierPartNumber Field = "supplier_part_number"
)

// Descriptive fields.
const (
	FieldName                 Field = "name"
	FieldShortDescription     Field = "short_description"
	FieldDescription          Field = "description"
	FieldDescriptionHTML      Field = "description_html"
	FieldFeatures             Field = "features"
	FieldMarketingDescription Field = "marketing_description"
	FieldGeneralComments      Field = "general_comments"
	FieldCategoryName         Field = "category_name"
	FieldCategoryCode         Field = "category_code"
	FieldSubcategoryName      Field = "subcategory_name"
	FieldBrandName            Field = "brand_name"
	FieldBrandPrefix          Field = "brand_prefix"
	FieldImageURL             Field = "image_url"
	FieldProductURL           Field = "product_url"
	FieldWarranty             Field = "warranty"
	FieldAlternativeSKUs      Field = "alternative_skus"
	FieldAccessorySKUs        Field = "accessory_skus"
	FieldPDFAvailable         Field = "pdf_available"
)

// Commercial and physical fields.
const (
	FieldCostPrice     Field = "cost_price"
	FieldRetailPrice   Field = "retail_price"
	FieldTaxType       Field = "tax_type"
	FieldTaxRate       Field = "tax_rate"
	FieldWeight        Field = "weight"
	FieldLength        Field = "length"
	FieldWidth         Field = "width"
	FieldHeight        Field = "height"
	FieldUnitOfMeasure Field = "unit_of_measure"
)

// Stock and availability fields.
const (
	FieldStockTotal        Field = "stock_total"
	FieldStockWarehouseA   Field = "stock_warehouse_a"
	FieldStockWarehouseB   Field = "stock_warehouse_b"
	FieldStockWarehouseC   Field = "stock_warehouse_c"
	FieldStockWarehouseD   Field = "stock_warehouse_d"
	FieldStockWarehouseE   Field = "stock_warehouse_e"
	FieldStockWarehouseADL Field = "stock_warehouse_adl"
	FieldStockWarehouseBNE Field = "stock_warehouse_bne"
	FieldStockWarehouseMEL Field = "stock_warehouse_mel"
	FieldStockWarehouseSYD Field = "stock_warehouse_syd"
	FieldETAWarehouseA     Field = "eta_warehouse_a"
	FieldETAWarehouseB     Field = "eta_warehouse_b"
	FieldETAWarehouseC     Field = "eta_warehouse_c"
	FieldETAWarehouseD     Field = "eta_warehouse_d"
	FieldETAWarehouseE     Field = "eta_warehouse_e"
	FieldETADate           Field = "eta_date"
	FieldETAStatus         Field = "eta_status"
	FieldLastUpdated       Field = "last_updated"
)

// Spec describes the canonical type of one field.
type Spec struct {
	Kind Kind
	// Scale is the number of decimal places kept for KindDecimal fields.
	Scale int32
}

var vocabulary = map[Field]Spec{
	FieldSupplierCode:       {Kind: KindText},
	FieldSKU:                {Kind: KindText},
	FieldBrandSKU:           {Kind: KindText},
	FieldBarcode:            {Kind: KindText},
	FieldEAN:                {Kind: KindText},
	FieldUPC:                {Kind: KindText},
	FieldASIN:               {Kind: KindText},
	FieldISBN:               {Kind: KindText},
	FieldSupplierPartNumber: {Kind: KindText},

	FieldName:                 {Kind: KindText},
	FieldShortDescription:     {Kind: KindText},
	FieldDescription:          {Kind: KindText},
	FieldDescriptionHTML:      {Kind: KindText},
	FieldFeatures:             {Kind: KindText},
	FieldMarketingDescription: {Kind: KindText},
	FieldGeneralComments:      {Kind: KindText},
	FieldCategoryName:         {Kind: KindText},
	FieldCategoryCode:         {Kind: KindText},
	FieldSubcategoryName:      {Kind: KindText},
	FieldBrandName:            {Kind: KindText},
	FieldBrandPrefix:          {Kind: KindText},
	FieldImageURL:             {Kind: KindText},
	FieldProductURL:           {Kind: KindText},
	FieldWarranty:             {Kind: KindText},
	FieldAlternativeSKUs:      {Kind: KindText},
	FieldAccessorySKUs:        {Kind: KindText},
	FieldPDFAvailable:         {Kind: KindBoolean},

	FieldCostPrice:     {Kind: KindDecimal, Scale: 2},
	FieldRetailPrice:   {Kind: KindDecimal, Scale: 2},
	FieldTaxType:       {Kind: KindText},
	FieldTaxRate:       {Kind: KindDecimal, Scale: 2},
	FieldWeight:        {Kind: KindDecimal, Scale: 3},
	FieldLength:        {Kind: KindDecimal, Scale: 2},
	FieldWidth:         {Kind: KindDecimal, Scale: 2},
	FieldHeight:        {Kind: KindDecimal, Scale: 2},
	FieldUnitOfMeasure: {Kind: KindText},

	FieldStockTotal:        {Kind: KindInteger},
	FieldStockWarehouseA:   {Kind: KindInteger},
	FieldStockWarehouseB:   {Kind: KindInteger},
	FieldStockWarehouseC:   {Kind: KindInteger},
	FieldStockWarehouseD:   {Kind: KindInteger},
	FieldStockWarehouseE:   {Kind: KindInteger},
	FieldStockWarehouseADL: {Kind: KindInteger},
	FieldStockWarehouseBNE: {Kind: KindInteger},
	FieldStockWarehouseMEL: {Kind: KindInteger},
	FieldStockWarehouseSYD: {Kind: KindInteger},
	FieldETAWarehouseA:     {Kind: KindDate},
	FieldETAWarehouseB:     {Kind: KindDate},
	FieldETAWarehouseC:     {Kind: KindDate},
	FieldETAWarehouseD:     {Kind: KindDate},
	FieldETAWarehouseE:     {Kind: KindDate},
	FieldETADate:           {Kind: KindDate},
	FieldETAStatus:         {Kind: KindText},
	FieldLastUpdated:       {Kind: KindDateTime},
}

// WarehouseStockFields are the per-warehouse stock counters.
var WarehouseStockFields = []Field{
	FieldStockWarehouseA,
	FieldStockWarehouseB,
	FieldStockWarehouseC,
	FieldStockWarehouseD,
	FieldStockWarehouseE,
	FieldStockWarehouseADL,
	FieldStockWarehouseBNE,
	FieldStockWarehouseMEL,
	FieldStockWarehouseSYD,
}

// Lookup returns the definition of a canonical field.
func Lookup(f Field) (Spec, bool) {
	spec, ok := vocabulary[f]
	return spec, ok
}

// Known reports whether f belongs to the canonical vocabulary.
func Known(f Field) bool {
	_, ok := vocabulary[f]
	return ok
}

// Fields returns the whole vocabulary in name order.
func Fields() []Field {
	fields := make([]Field, 0, len(vocabulary))
	for f := range vocabulary {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
