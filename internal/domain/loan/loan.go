package loan

type LoanType string

const (
	TypePersonal LoanType = "Personal"
	TypeCar      LoanType = "Car"
	TypeHome     LoanType = "Home"
)

// LoanTypes lists the closed set of supported loan types.
func LoanTypes() []LoanType {
	return []LoanType{TypePersonal, TypeCar, TypeHome}
}

func (t LoanType) IsKnown() bool {
	switch t {
	case TypePersonal, TypeCar, TypeHome:
		return true
	default:
		return false
	}
}

// Loan is the persisted loan record. ID is assigned by the repository on insert
// and MonthlyPayment is derived by the service before every write.
type Loan struct {
	ID             string
	Name           string
	Amount         int64
	Type           LoanType
	Income         int64
	InterestRate   float64
	MonthlyPayment *float64
}

func (l *Loan) Clone() *Loan {
	if l == nil {
		return nil
	}
	c := *l
	if l.MonthlyPayment != nil {
		payment := *l.MonthlyPayment
		c.MonthlyPayment = &payment
	}
	return &c
}
