package datavision

// DomainVocabulary is the fixed energy-metering glossary given to the model
// in both the analysis prompt and the chat system instruction, so that both
// phases read the columns the same way.
const DomainVocabulary = `Context: energy management and meter reading.
- "unit": energy units read from a meter. A value of exactly 0.00 is valid; an empty (null) value is never valid and marks a data-quality defect.
- "station": a meter reading station, a fixed physical point where units are measured and tracked.
- "PEA": the Provincial Electricity Authority, the external utility.
- "pea_import": energy received from PEA (bought in).
- "pea_export": energy delivered to PEA (sold back or sent out).`
