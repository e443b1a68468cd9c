package model

// Optional различает "поле не передано" и "поле передано"
// нулевое значение означает, что поле не передавалось
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some возвращает заполненный Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Or возвращает значение, если оно задано, иначе fallback
func (o Optional[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

// OrderPatch описывает частичное обновление заказа
// заданные поля перезаписывают сохранённые, незаданные остаются как есть
type OrderPatch struct {
	Address       Optional[string]
	RecipientName Optional[string]
	Items         Optional[[]Item]
	Active        Optional[bool]
	Status        Optional[Status]
}

// Apply возвращает копию заказа с применёнными изменениями
func (p OrderPatch) Apply(o Order) Order {
	o.Address = p.Address.Or(o.Address)
	o.RecipientName = p.RecipientName.Or(o.RecipientName)
	o.Items = NormalizeItems(p.Items.Or(o.Items))
	o.Active = p.Active.Or(o.Active)
	o.Status = p.Status.Or(o.Status)
	return o
}

// Empty сообщает, что ни одно поле не задано
func (p OrderPatch) Empty() bool {
	return !p.Address.Set && !p.RecipientName.Set && !p.Items.Set && !p.Active.Set && !p.Status.Set
}
