package reportflow

// Field names a step input that can carry a validation error
type Field string

const (
	FieldMicrochip    Field = "microchipNumber"
	FieldPhoto        Field = "photo"
	FieldLastSeenDate Field = "lastSeenDate"
	FieldPetName      Field = "petName"
	FieldSpecies      Field = "species"
	FieldBreed        Field = "breed"
	FieldSex          Field = "sex"
	FieldAge          Field = "age"
	FieldDescription  Field = "description"
	FieldLatitude     Field = "latitude"
	FieldLongitude    Field = "longitude"
	FieldPhone        Field = "phone"
	FieldEmail        Field = "email"
	FieldReward       Field = "reward"
	// FieldContact carries the "phone or email" error
	FieldContact Field = "contact"
)

// Step validation messages
const (
	MessageSpeciesRequired   = "Select the species"
	MessageBreedRequired     = "Enter the breed"
	MessageSexRequired       = "Select the sex"
	MessageAgeDigits         = "Age must be a whole number"
	MessageAgeRange          = "Age must be between 0 and 40"
	MessageLatitudeInvalid   = "Latitude must be a number"
	MessageLongitudeInvalid  = "Longitude must be a number"
	MessageLatitudeMissing   = "Enter latitude as well"
	MessageLongitudeMissing  = "Enter longitude as well"
	MessageContactRequired   = "Enter a phone number or an email address"
	MessagePhoneTooShort     = "Phone number must have at least 7 digits"
	MessagePhoneTooLong      = "Phone number must have at most 11 digits"
	MessageEmailInvalid      = "Enter a valid email address"
	MessageFixErrors         = "Please correct the highlighted fields"
	MessagePhotoRequired     = "Add a photo of your pet to continue"
	MessagePhotoFailed       = "Could not read the selected photo. Try another one."
	MessageLocationDenied    = "Location access is off. Enable it in settings to use your position."
	MessageLocationFailed    = "Could not get your current location"
	MessagePasswordCopied    = "Management password copied"
	MessagePhotoUploadFailed = "Your announcement was created but the photo could not be uploaded."
)

// Phone digit bounds
const (
	MinPhoneDigits = 7
	MaxPhoneDigits = 11
)

type fieldErrors map[Field]string

func (e fieldErrors) clone() map[Field]string {
	if len(e) == 0 {
		return nil
	}
	out := make(map[Field]string, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
