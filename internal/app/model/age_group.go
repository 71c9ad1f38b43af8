package model

// Column limits shared by the schema and admin form validation.
const (
	AgeGroupNameMaxLength  = 50
	AgeGroupRangeMaxLength = 10
	AgeGroupColorMaxLength = 20
)

// AgeGroup is a reader age bracket. Range is the code stories refer to in
// Story.AgeGroup (for example "6-8").
type AgeGroup struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `gorm:"type:varchar(50);not null" json:"name"`
	Range string `gorm:"type:varchar(10);not null" json:"range"`
	Color string `gorm:"type:varchar(20);not null" json:"color"`
}

func (AgeGroup) TableName() string {
	return "age_groups"
}

func (a AgeGroup) String() string {
	return a.Name
}
