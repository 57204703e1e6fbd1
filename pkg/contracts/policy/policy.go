package policy

// Política de depósito manual, compartilhada entre o serviço e o cliente.
// O serviço revalida sempre; os checks do cliente são só resposta imediata
// na UI, nunca fronteira de segurança.
const (
	MinDepositAmount = 10 // ₹
	UTRLength        = 12
)
